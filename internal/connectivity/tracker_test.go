package connectivity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/apiclient"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

type stubHealth struct {
	err error
}

func (s stubHealth) Health(context.Context) (models.HealthStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	return models.HealthStatus{"status": "healthy"}, nil
}

func TestNewTracker_StartsOnline(t *testing.T) {
	snap := NewTracker(nil).Snapshot()

	assert.Equal(t, Online, snap.State)
	assert.True(t, snap.BackendConnected)
	assert.False(t, snap.ShowOfflineBanner)
}

func TestRecord_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantState  State
		wantBanner bool
	}{
		{"success", nil, Online, false},
		{"transport failure", &apiclient.ConnectivityError{BaseURL: "http://api"}, Unreachable, true},
		{"non-2xx", &apiclient.APIError{Status: 500}, ServerError, true},
		{"bad body", &apiclient.DecodeError{Endpoint: "/stock/levels", Err: errors.New("eof")}, ServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(nil)
			tracker.Record(tt.err)

			snap := tracker.Snapshot()
			assert.Equal(t, tt.wantState, snap.State)
			assert.Equal(t, tt.wantState == Online, snap.BackendConnected)
			assert.Equal(t, tt.wantBanner, snap.ShowOfflineBanner)
		})
	}
}

func TestRecord_CanceledIsIgnored(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.RecordTransportFailure(errors.New("refused"))

	tracker.Record(context.Canceled)

	assert.Equal(t, Unreachable, tracker.Snapshot().State)
}

func TestDismissBanner_KeepsState(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.RecordTransportFailure(&apiclient.ConnectivityError{BaseURL: "http://api"})

	tracker.DismissBanner()

	snap := tracker.Snapshot()
	assert.False(t, snap.ShowOfflineBanner)
	assert.False(t, snap.BackendConnected)
	assert.Equal(t, Unreachable, snap.State)

	tracker.RecordSuccess()
	snap = tracker.Snapshot()
	assert.True(t, snap.BackendConnected)
	assert.False(t, snap.ShowOfflineBanner)
	assert.Empty(t, snap.LastError)
}

func TestOnChange_FiresOnlyOnChange(t *testing.T) {
	tracker := NewTracker(nil)
	var seen []Snapshot
	tracker.OnChange(func(s Snapshot) { seen = append(seen, s) })

	tracker.RecordSuccess()
	tracker.RecordServerError(&apiclient.APIError{Status: 502})
	tracker.DismissBanner()
	tracker.DismissBanner()
	tracker.RecordSuccess()

	require.Len(t, seen, 3)
	assert.Equal(t, ServerError, seen[0].State)
	assert.False(t, seen[1].ShowOfflineBanner)
	assert.Equal(t, Online, seen[2].State)
}

func TestProbe(t *testing.T) {
	tracker := NewTracker(nil)

	_, err := tracker.Probe(context.Background(), stubHealth{err: &apiclient.ConnectivityError{BaseURL: "http://api"}})
	require.Error(t, err)
	assert.False(t, tracker.Connected())

	health, err := tracker.Probe(context.Background(), stubHealth{})
	require.NoError(t, err)
	assert.Equal(t, "healthy", health["status"])
	assert.True(t, tracker.Connected())
}
