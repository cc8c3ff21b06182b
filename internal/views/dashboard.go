package views

import (
	"context"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/connectivity"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// Dashboard is the home page: four counters and the API health indicator
type Dashboard struct {
	deps  Deps
	stats *fetch.Query[*models.DashboardResponse]
}

// DashboardSnapshot is the JSON view of the home page
type DashboardSnapshot struct {
	Stats        fetch.Result[*models.DashboardStats] `json:"stats"`
	Connectivity *connectivity.Snapshot               `json:"connectivity,omitempty"`
}

// NewDashboard creates the home page controller
func NewDashboard(deps Deps) *Dashboard {
	return &Dashboard{
		deps:  deps,
		stats: newQuery[*models.DashboardResponse](deps, "dashboard.stats", "No dashboard data yet"),
	}
}

// Load fetches the counters
func (d *Dashboard) Load(ctx context.Context) DashboardSnapshot {
	d.stats.Run(ctx, d.deps.API.DashboardStats)
	return d.Snapshot()
}

// Probe checks API health and records it on the shared tracker
func (d *Dashboard) Probe(ctx context.Context) (models.HealthStatus, error) {
	if d.deps.Tracker == nil {
		return d.deps.API.Health(ctx)
	}
	return d.deps.Tracker.Probe(ctx, d.deps.API)
}

// Snapshot returns the current state
func (d *Dashboard) Snapshot() DashboardSnapshot {
	snap := DashboardSnapshot{
		Stats: fetch.Map(d.stats.Result(), func(r *models.DashboardResponse) *models.DashboardStats { return r.Data }),
	}
	if d.deps.Tracker != nil {
		conn := d.deps.Tracker.Snapshot()
		snap.Connectivity = &conn
	}
	return snap
}

func (d *Dashboard) reset() {
	d.stats.Reset()
}
