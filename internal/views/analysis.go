package views

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Tab is one view of the analysis page
type Tab string

const (
	TabHistorical  Tab = "historical"
	TabPerformance Tab = "performance"
	TabBestSellers Tab = "bestsellers"
	TabIncome      Tab = "income"
)

// ErrUnknownTab is returned for a tab name ParseTab does not know
var ErrUnknownTab = errors.New("unknown analysis tab")

// ParseTab validates a tab name. "sellers" is accepted for bestsellers.
func ParseTab(s string) (Tab, error) {
	switch tab := Tab(strings.ToLower(strings.TrimSpace(s))); tab {
	case TabHistorical, TabPerformance, TabBestSellers, TabIncome:
		return tab, nil
	case "sellers", "best_sellers":
		return TabBestSellers, nil
	default:
		return "", ErrUnknownTab
	}
}

// Analysis is the four-tab analysis page
type Analysis struct {
	Historical  *Historical
	Performance *Performance
	BestSellers *BestSellers
	Income      *Income

	mu     sync.Mutex
	active Tab
}

// AnalysisSnapshot is the JSON view of the analysis page
type AnalysisSnapshot struct {
	Active      Tab                 `json:"active"`
	Historical  HistoricalSnapshot  `json:"historical"`
	Performance PerformanceSnapshot `json:"performance"`
	BestSellers BestSellersSnapshot `json:"bestsellers"`
	Income      IncomeSnapshot      `json:"income"`
}

// NewAnalysis creates the analysis page with the history tab active
func NewAnalysis(deps Deps, suggestionDelay time.Duration) *Analysis {
	return &Analysis{
		Historical:  NewHistorical(deps, suggestionDelay),
		Performance: NewPerformance(deps),
		BestSellers: NewBestSellers(deps),
		Income:      NewIncome(deps),
		active:      TabHistorical,
	}
}

// Activate switches tabs. Other tabs keep their state; the best sellers
// and income tabs load with their current inputs on activation.
func (a *Analysis) Activate(ctx context.Context, tab Tab) (AnalysisSnapshot, error) {
	tab, err := ParseTab(string(tab))
	if err != nil {
		return a.Snapshot(), err
	}

	a.mu.Lock()
	a.active = tab
	a.mu.Unlock()

	switch tab {
	case TabBestSellers:
		_, err = a.BestSellers.Reload(ctx)
	case TabIncome:
		_, err = a.Income.Reload(ctx)
	}
	return a.Snapshot(), err
}

// Active returns the active tab
func (a *Analysis) Active() Tab {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Snapshot returns the current state of every tab
func (a *Analysis) Snapshot() AnalysisSnapshot {
	return AnalysisSnapshot{
		Active:      a.Active(),
		Historical:  a.Historical.Snapshot(),
		Performance: a.Performance.Snapshot(),
		BestSellers: a.BestSellers.Snapshot(),
		Income:      a.Income.Snapshot(),
	}
}

func (a *Analysis) reset() {
	a.Historical.reset()
	a.Performance.reset()
	a.BestSellers.reset()
	a.Income.reset()
}
