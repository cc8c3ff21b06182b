package apiclient

import (
	"context"
	"errors"
	"fmt"
)

// Class groups client errors by what they say about the remote API
type Class string

const (
	ClassNone        Class = ""
	ClassUnreachable Class = "unreachable"
	ClassServerError Class = "server_error"
	ClassCanceled    Class = "canceled"
)

// ConnectivityError means no HTTP response was received: DNS failure,
// refused connection, reset or timeout.
type ConnectivityError struct {
	BaseURL string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return "Cannot connect to backend. Make sure the backend server is running on " + e.BaseURL
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// APIError is a non-2xx response. Detail is the body's "detail" field when
// one could be parsed.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("API Error: %d", e.Status)
}

// DecodeError is a 2xx response whose body does not match the endpoint schema
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Classify maps an error returned by the client to its failure class.
// Unknown errors count as transport failures.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}

	var connErr *ConnectivityError
	var apiErr *APIError
	var decodeErr *DecodeError
	switch {
	case errors.As(err, &connErr):
		return ClassUnreachable
	case errors.As(err, &apiErr), errors.As(err, &decodeErr):
		return ClassServerError
	case errors.Is(err, context.Canceled):
		return ClassCanceled
	default:
		return ClassUnreachable
	}
}
