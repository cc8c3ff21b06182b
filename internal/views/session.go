package views

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/connectivity"
)

// SessionConfig tunes the controllers of a session
type SessionConfig struct {
	LowStockThreshold  int
	SuggestionDebounce time.Duration
}

// Session owns one controller per page and the connectivity tracker they
// share
type Session struct {
	Tracker       *connectivity.Tracker
	Dashboard     *Dashboard
	Stocks        *Stocks
	Notifications *Notifications
	Analysis      *Analysis
	Predict       *Predict
}

// SessionSnapshot is the state of every page
type SessionSnapshot struct {
	Connectivity  connectivity.Snapshot `json:"connectivity"`
	Dashboard     DashboardSnapshot     `json:"dashboard"`
	Stocks        StocksSnapshot        `json:"stocks"`
	Notifications NotificationsSnapshot `json:"notifications"`
	Analysis      AnalysisSnapshot      `json:"analysis"`
	Predict       PredictSnapshot       `json:"predict"`
}

// NewSession wires every controller to deps. A tracker is created when
// deps has none.
func NewSession(deps Deps, cfg SessionConfig) *Session {
	if deps.Tracker == nil {
		deps.Tracker = connectivity.NewTracker(deps.logger())
	}
	return &Session{
		Tracker:       deps.Tracker,
		Dashboard:     NewDashboard(deps),
		Stocks:        NewStocks(deps, cfg.LowStockThreshold),
		Notifications: NewNotifications(deps),
		Analysis:      NewAnalysis(deps, cfg.SuggestionDebounce),
		Predict:       NewPredict(deps),
	}
}

// LoadAll loads the home, stock and notification pages concurrently.
// Fetch failures land in each page's result, and the loads outlive ctx,
// so the snapshot is always complete.
func (s *Session) LoadAll(ctx context.Context) SessionSnapshot {
	var g errgroup.Group
	g.Go(func() error {
		s.Dashboard.Load(ctx)
		return nil
	})
	g.Go(func() error {
		s.Stocks.Load(ctx)
		return nil
	})
	g.Go(func() error {
		s.Notifications.Load(ctx)
		return nil
	})
	_ = g.Wait()
	return s.Snapshot()
}

// Snapshot returns the state of every page
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Connectivity:  s.Tracker.Snapshot(),
		Dashboard:     s.Dashboard.Snapshot(),
		Stocks:        s.Stocks.Snapshot(),
		Notifications: s.Notifications.Snapshot(),
		Analysis:      s.Analysis.Snapshot(),
		Predict:       s.Predict.Snapshot(),
	}
}

// Reset returns every query to idle and drops in-flight fetches. Inputs,
// selections and staged files are kept.
func (s *Session) Reset() {
	s.Dashboard.reset()
	s.Stocks.reset()
	s.Notifications.reset()
	s.Analysis.reset()
	s.Predict.reset()
}

// Close stops pending debounced fetches
func (s *Session) Close() {
	s.Analysis.Historical.Suggestions.Close()
}
