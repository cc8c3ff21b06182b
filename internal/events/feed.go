package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// DefaultMaxEvents is used when the config leaves the feed size unset
const DefaultMaxEvents = 1000

// Feed is an in-memory, offset-addressed log of view changes. Renderers
// poll it to learn which snapshot to refetch.
type Feed struct {
	mu         sync.RWMutex
	events     []models.Event
	nextOffset int64
	maxEvents  int
	logger     *slog.Logger

	waiters      map[int64][]chan struct{}
	waitersMutex sync.Mutex
}

// FeedConfig holds configuration for the feed
type FeedConfig struct {
	MaxEvents int
	Logger    *slog.Logger
}

// NewFeed creates an empty feed
func NewFeed(config FeedConfig) *Feed {
	maxEvents := config.MaxEvents
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Event feed initialized", "max_events", maxEvents)

	return &Feed{
		events:    make([]models.Event, 0),
		maxEvents: maxEvents,
		logger:    logger,
		waiters:   make(map[int64][]chan struct{}),
	}
}

// Publish appends an event and wakes long-polling readers
func (f *Feed) Publish(source, name, status string, seq uint64, message string) models.Event {
	f.mu.Lock()
	event := models.Event{
		Offset:    f.nextOffset,
		Timestamp: time.Now().Format(time.RFC3339),
		Source:    source,
		Name:      name,
		Status:    status,
		Seq:       seq,
		Message:   message,
	}
	f.nextOffset++
	f.events = append(f.events, event)

	// Rotate if necessary, keeping 75% of max events
	if len(f.events) > f.maxEvents {
		keepCount := f.maxEvents * 3 / 4
		removed := len(f.events) - keepCount
		f.events = append([]models.Event(nil), f.events[removed:]...)
		f.logger.Info("Event feed rotated", "removed_events", removed, "remaining_events", len(f.events))
	}
	f.mu.Unlock()

	f.logger.Debug("Event published", "offset", event.Offset, "source", source, "name", name, "status", status)
	f.notifyWaiters(event.Offset)
	return event
}

// GetEvents retrieves up to limit events starting at fromOffset
func (f *Feed) GetEvents(fromOffset int64, limit int) ([]models.Event, int64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	startIdx := -1
	for i, event := range f.events {
		if event.Offset >= fromOffset {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return []models.Event{}, f.nextOffset, false
	}

	endIdx := startIdx + limit
	hasMore := endIdx < len(f.events)
	if endIdx > len(f.events) {
		endIdx = len(f.events)
	}

	result := make([]models.Event, endIdx-startIdx)
	copy(result, f.events[startIdx:endIdx])

	nextOffset := f.nextOffset
	if len(result) > 0 {
		nextOffset = result[len(result)-1].Offset + 1
	}
	return result, nextOffset, hasMore
}

// WaitForEvents returns a channel closed when an event at or after
// fromOffset exists, or when timeout elapses. The returned cancel releases
// the waiter early; call it once the caller stops waiting.
func (f *Feed) WaitForEvents(fromOffset int64, timeout time.Duration) (<-chan struct{}, func()) {
	f.waitersMutex.Lock()
	defer f.waitersMutex.Unlock()

	notifyChan := make(chan struct{})

	f.mu.RLock()
	available := fromOffset < f.nextOffset
	f.mu.RUnlock()
	if available {
		close(notifyChan)
		return notifyChan, func() {}
	}

	f.waiters[fromOffset] = append(f.waiters[fromOffset], notifyChan)

	timer := time.AfterFunc(timeout, func() {
		f.removeWaiter(fromOffset, notifyChan)
	})
	cancel := func() {
		timer.Stop()
		f.removeWaiter(fromOffset, notifyChan)
	}
	return notifyChan, cancel
}

// removeWaiter closes ch and drops it from the waiters of offset
func (f *Feed) removeWaiter(offset int64, ch chan struct{}) {
	f.waitersMutex.Lock()
	defer f.waitersMutex.Unlock()

	closeOnce(ch)
	waiters := f.waiters[offset]
	for i, waiter := range waiters {
		if waiter == ch {
			waiters = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(waiters) == 0 {
		delete(f.waiters, offset)
	} else {
		f.waiters[offset] = waiters
	}
}

// pendingWaiters counts registered waiters
func (f *Feed) pendingWaiters() int {
	f.waitersMutex.Lock()
	defer f.waitersMutex.Unlock()

	n := 0
	for _, waiters := range f.waiters {
		n += len(waiters)
	}
	return n
}

// CurrentOffset returns the next offset to be assigned
func (f *Feed) CurrentOffset() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.nextOffset
}

// notifyWaiters wakes every waiter waiting for offset or earlier
func (f *Feed) notifyWaiters(offset int64) {
	f.waitersMutex.Lock()
	defer f.waitersMutex.Unlock()

	for waitOffset, waiters := range f.waiters {
		if waitOffset <= offset {
			for _, waiter := range waiters {
				closeOnce(waiter)
			}
			delete(f.waiters, waitOffset)
		}
	}
}

// closeOnce must be called with waitersMutex held
func closeOnce(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}
