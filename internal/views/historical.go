package views

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/charts"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// HistoricalView is a successful historical search shaped for display
type HistoricalView struct {
	SearchType string             `json:"searchType,omitempty"`
	Sizes      []string           `json:"sizes"`
	Table      []models.Record    `json:"table"`
	Chart      charts.StackedBars `json:"chart"`
}

// Historical is the sales history tab: search by SKU or category,
// autocomplete suggestions and the base SKU lookup
type Historical struct {
	deps        Deps
	sales       *fetch.Query[*models.HistoricalResponse]
	baseSKUs    *fetch.Query[*models.BaseSKUsResponse]
	Suggestions *Suggestions

	mu  sync.Mutex
	sku string
}

// HistoricalSnapshot is the JSON view of the history tab
type HistoricalSnapshot struct {
	SKU         string                        `json:"sku"`
	Sales       fetch.Result[*HistoricalView] `json:"sales"`
	BaseSKUs    fetch.Result[[]string]        `json:"baseSkus"`
	Suggestions SuggestionsSnapshot           `json:"suggestions"`
}

// NewHistorical creates the history tab controller
func NewHistorical(deps Deps, suggestionDelay time.Duration) *Historical {
	return &Historical{
		deps:        deps,
		sales:       newQuery[*models.HistoricalResponse](deps, "analysis.historical", "No historical data found for this SKU"),
		baseSKUs:    newQuery[*models.BaseSKUsResponse](deps, "analysis.base_skus", "No matching base SKUs"),
		Suggestions: NewSuggestions(deps, suggestionDelay),
	}
}

// Search fetches the history of a SKU or category. A blank sku is
// rejected without a request.
func (h *Historical) Search(ctx context.Context, sku string) (HistoricalSnapshot, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return h.Snapshot(), inputRequired("sku")
	}

	h.mu.Lock()
	h.sku = sku
	h.mu.Unlock()
	h.Suggestions.Close()

	h.sales.RunKeyed(ctx, sku, func(ctx context.Context) (*models.HistoricalResponse, error) {
		return h.deps.API.HistoricalSales(ctx, sku)
	})
	return h.Snapshot(), nil
}

// Choose picks a suggestion: the input takes its value and the search runs
func (h *Historical) Choose(ctx context.Context, value string) (HistoricalSnapshot, error) {
	h.Suggestions.SetText(value)
	return h.Search(ctx, value)
}

// LookupBaseSKUs lists base SKUs containing search; blank lists all
func (h *Historical) LookupBaseSKUs(ctx context.Context, search string) HistoricalSnapshot {
	search = strings.TrimSpace(search)
	h.baseSKUs.RunKeyed(ctx, search, func(ctx context.Context) (*models.BaseSKUsResponse, error) {
		return h.deps.API.BaseSKUs(ctx, search)
	})
	return h.Snapshot()
}

// Snapshot returns the current state
func (h *Historical) Snapshot() HistoricalSnapshot {
	h.mu.Lock()
	sku := h.sku
	h.mu.Unlock()

	return HistoricalSnapshot{
		SKU: sku,
		Sales: fetch.Map(h.sales.Result(), func(r *models.HistoricalResponse) *HistoricalView {
			return &HistoricalView{
				SearchType: r.SearchType,
				Sizes:      r.Sizes,
				Table:      r.TableData,
				Chart:      charts.NewStackedBars(r.ChartData, r.Sizes),
			}
		}),
		BaseSKUs:    fetch.Map(h.baseSKUs.Result(), func(r *models.BaseSKUsResponse) []string { return r.BaseSKUs }),
		Suggestions: h.Suggestions.Snapshot(),
	}
}

func (h *Historical) reset() {
	h.sales.Reset()
	h.baseSKUs.Reset()
	h.Suggestions.Close()
}

// Suggestions is the autocomplete under the history search box. Keystrokes
// are debounced; a list is only shown for the text it was fetched for.
type Suggestions struct {
	deps      Deps
	query     *fetch.Query[*models.SuggestionsResponse]
	debouncer *fetch.Debouncer

	// generation moves on every close; a debounced fetch scheduled under
	// an older generation never starts
	generation atomic.Uint64

	mu   sync.Mutex
	text string
}

// SuggestionsSnapshot is the JSON view of the autocomplete
type SuggestionsSnapshot struct {
	Text    string              `json:"text"`
	Open    bool                `json:"open"`
	Loading bool                `json:"loading"`
	Items   []models.Suggestion `json:"items"`
	Message string              `json:"message,omitempty"`
}

// NewSuggestions creates the autocomplete controller
func NewSuggestions(deps Deps, delay time.Duration) *Suggestions {
	return &Suggestions{
		deps:      deps,
		query:     newQuery[*models.SuggestionsResponse](deps, "analysis.suggestions", "No suggestions"),
		debouncer: fetch.NewDebouncer(delay),
	}
}

// Type records a keystroke. Non-empty text schedules a suggestion fetch;
// empty text cancels any pending or in-flight fetch and closes the list.
func (s *Suggestions) Type(ctx context.Context, text string) SuggestionsSnapshot {
	s.SetText(text)

	term := strings.TrimSpace(text)
	if term == "" {
		s.Close()
		return s.Snapshot()
	}

	runCtx := context.WithoutCancel(ctx)
	gen := s.generation.Load()
	s.debouncer.Trigger(func() {
		s.fetch(runCtx, term, gen)
	})
	return s.Snapshot()
}

// fetch loads suggestions for term unless the list was closed after gen
func (s *Suggestions) fetch(ctx context.Context, term string, gen uint64) {
	current := func() bool { return s.generation.Load() == gen }
	s.query.RunKeyedWhile(ctx, term, current, func(ctx context.Context) (*models.SuggestionsResponse, error) {
		return s.deps.API.SearchSuggestions(ctx, term)
	})
}

// SetText replaces the input text without fetching
func (s *Suggestions) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

// Close drops pending and in-flight fetches and hides the list
func (s *Suggestions) Close() {
	s.generation.Add(1)
	s.debouncer.Stop()
	s.query.Reset()
}

// Snapshot returns the current state
func (s *Suggestions) Snapshot() SuggestionsSnapshot {
	s.mu.Lock()
	text := s.text
	s.mu.Unlock()

	result := s.query.Result()
	snap := SuggestionsSnapshot{Text: text, Items: []models.Suggestion{}}
	if result.Key != strings.TrimSpace(text) {
		return snap
	}
	snap.Loading = result.Busy()
	switch result.Status {
	case fetch.StatusSuccess:
		snap.Open = true
		snap.Items = result.Data.Suggestions
	case fetch.StatusEmpty, fetch.StatusError:
		snap.Message = result.Message
	}
	return snap
}
