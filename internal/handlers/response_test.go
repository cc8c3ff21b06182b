package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/views"
)

func TestWriteActionResponse_ClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/v1/session/load", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	writeActionResponse(rec, req, map[string]string{"page": "stocks"}, fmt.Errorf("load: %w", context.Canceled))

	assert.False(t, rec.Flushed)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestClassifyActionError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "missing input", err: views.ErrInputRequired, status: http.StatusUnprocessableEntity, code: "input_required"},
		{name: "out of range", err: views.ErrInvalidInput, status: http.StatusUnprocessableEntity, code: "invalid_input"},
		{name: "unknown tab", err: views.ErrUnknownTab, status: http.StatusBadRequest, code: "bad_request"},
		{name: "canceled with live request", err: context.Canceled, status: http.StatusInternalServerError, code: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classifyActionError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
