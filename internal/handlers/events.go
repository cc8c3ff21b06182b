package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/events"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// EventsHandler serves the view change feed
type EventsHandler struct {
	feed   *events.Feed
	logger *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(feed *events.Feed, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		feed:   feed,
		logger: logger,
	}
}

// GetEvents handles GET /v1/events?offset=&limit=&wait=. Without an offset
// the feed is read from the start.
func (h *EventsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	var offset int64
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsed, err := strconv.ParseInt(offsetStr, 10, 64)
		if err != nil || parsed < 0 {
			writeErrorResponse(w, http.StatusBadRequest, "bad_request", "invalid offset parameter", nil)
			return
		}
		offset = parsed
	}

	limit := 100 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 1000 {
			limit = parsedLimit
		}
	}

	waitSeconds := 0 // default
	if waitStr := r.URL.Query().Get("wait"); waitStr != "" {
		if parsedWait, err := strconv.Atoi(waitStr); err == nil && parsedWait >= 0 && parsedWait <= 60 {
			waitSeconds = parsedWait
		}
	}

	h.logger.Debug("Events request received",
		"offset", offset,
		"limit", limit,
		"wait", waitSeconds,
		"remote_addr", r.RemoteAddr,
	)

	evts, nextOffset, hasMore := h.feed.GetEvents(offset, limit)

	// Long poll when the reader is caught up
	if len(evts) == 0 && waitSeconds > 0 {
		waitChan, cancel := h.feed.WaitForEvents(offset, time.Duration(waitSeconds)*time.Second)
		defer cancel()

		select {
		case <-waitChan:
			evts, nextOffset, hasMore = h.feed.GetEvents(offset, limit)
		case <-r.Context().Done():
			h.logger.Debug("Client disconnected during long polling", "offset", offset)
			return
		}
	}

	if evts == nil {
		evts = []models.Event{}
	}

	writeJSONResponse(w, http.StatusOK, models.EventsResponse{
		Events:     evts,
		NextOffset: nextOffset,
		HasMore:    hasMore,
		Count:      len(evts),
	})
}
