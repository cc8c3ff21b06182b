package fetch

import "time"

// Status is the lifecycle position of one logical query
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// Result is the {status, data, message} triple a renderer consumes.
// Data holds the zero value of T unless Status is success.
type Result[T any] struct {
	Status    Status    `json:"status"`
	Data      T         `json:"data"`
	Message   string    `json:"message,omitempty"`
	Key       string    `json:"key,omitempty"`
	Seq       uint64    `json:"seq"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Busy reports whether a request is in flight
func (r Result[T]) Busy() bool {
	return r.Status == StatusLoading
}

// Map converts the data of a successful result; other results keep their
// status and message with zero data.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := Result[U]{
		Status:    r.Status,
		Message:   r.Message,
		Key:       r.Key,
		Seq:       r.Seq,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Status == StatusSuccess {
		out.Data = fn(r.Data)
	}
	return out
}

// Change is published whenever a query's result moves
type Change struct {
	Query   string `json:"query"`
	Status  Status `json:"status"`
	Seq     uint64 `json:"seq"`
	Message string `json:"message,omitempty"`
}
