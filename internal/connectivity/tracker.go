package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/apiclient"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// State is the health of the remote API as seen by the last call
type State string

const (
	Online      State = "online"
	ServerError State = "server_error"
	Unreachable State = "unreachable"
)

// Snapshot is the JSON view of the tracker
type Snapshot struct {
	State             State     `json:"state"`
	BackendConnected  bool      `json:"backendConnected"`
	ShowOfflineBanner bool      `json:"showOfflineBanner"`
	LastError         string    `json:"lastError,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// HealthChecker is the part of the API client used by Probe
type HealthChecker interface {
	Health(ctx context.Context) (models.HealthStatus, error)
}

// Tracker is the single source of truth for API connectivity, shared by
// every view. Application-level "success: false" payloads never reach it
// as failures.
type Tracker struct {
	mu        sync.RWMutex
	state     State
	banner    bool
	lastError string
	updatedAt time.Time
	onChange  func(Snapshot)
	logger    *slog.Logger
}

// NewTracker creates a tracker that starts online with the banner hidden
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		state:     Online,
		updatedAt: time.Now(),
		logger:    logger,
	}
}

// OnChange registers a hook called after every state or banner change
func (t *Tracker) OnChange(fn func(Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// RecordSuccess marks the API reachable and hides the banner
func (t *Tracker) RecordSuccess() {
	t.set(Online, false, "")
}

// RecordTransportFailure marks the API unreachable and shows the banner
func (t *Tracker) RecordTransportFailure(err error) {
	t.set(Unreachable, true, errorText(err))
}

// RecordServerError marks the API reachable but failing and shows the banner
func (t *Tracker) RecordServerError(err error) {
	t.set(ServerError, true, errorText(err))
}

// Record routes the outcome of a client call to the matching transition.
// Canceled calls say nothing about the API and are ignored.
func (t *Tracker) Record(err error) {
	switch apiclient.Classify(err) {
	case apiclient.ClassNone:
		t.RecordSuccess()
	case apiclient.ClassServerError:
		t.RecordServerError(err)
	case apiclient.ClassCanceled:
		return
	default:
		t.RecordTransportFailure(err)
	}
}

// DismissBanner hides the banner without changing the state
func (t *Tracker) DismissBanner() {
	t.mu.Lock()
	if !t.banner {
		t.mu.Unlock()
		return
	}
	t.banner = false
	t.updatedAt = time.Now()
	snap, hook := t.snapshotLocked(), t.onChange
	t.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
}

// Snapshot returns the current state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

// Connected reports whether the last recorded call reached a healthy API
func (t *Tracker) Connected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state == Online
}

// Probe calls the health endpoint and records the outcome
func (t *Tracker) Probe(ctx context.Context, client HealthChecker) (models.HealthStatus, error) {
	health, err := client.Health(ctx)
	t.Record(err)
	return health, err
}

func (t *Tracker) set(state State, banner bool, lastError string) {
	t.mu.Lock()
	changed := t.state != state || t.banner != banner || t.lastError != lastError
	previous := t.state
	t.state = state
	t.banner = banner
	t.lastError = lastError
	t.updatedAt = time.Now()
	snap, hook := t.snapshotLocked(), t.onChange
	t.mu.Unlock()

	if previous != state {
		if state == Online {
			t.logger.Info("Backend connectivity restored", "previous", previous)
		} else {
			t.logger.Warn("Backend connectivity lost", "state", state, "error", lastError)
		}
	}

	if changed && hook != nil {
		hook(snap)
	}
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		State:             t.state,
		BackendConnected:  t.state == Online,
		ShowOfflineBanner: t.banner,
		LastError:         t.lastError,
		UpdatedAt:         t.updatedAt,
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
