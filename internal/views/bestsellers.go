package views

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/charts"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// DefaultTopN is the ranking length used when none is given
const DefaultTopN = 10

// BestSellersInput selects the month to rank. Zero values take defaults:
// the current year and month, and DefaultTopN.
type BestSellersInput struct {
	Year  int `json:"year" validate:"min=2000,max=2100"`
	Month int `json:"month" validate:"min=1,max=12"`
	TopN  int `json:"top_n" validate:"min=1,max=100"`
}

// BestSellersView is a successful ranking shaped for display
type BestSellersView struct {
	Rows  []models.BestSeller `json:"rows"`
	Chart charts.RankedBars   `json:"chart"`
}

// BestSellers is the top products tab
type BestSellers struct {
	deps    Deps
	ranking *fetch.Query[*models.BestSellersResponse]

	mu    sync.Mutex
	input BestSellersInput
}

// BestSellersSnapshot is the JSON view of the top products tab
type BestSellersSnapshot struct {
	Input   BestSellersInput               `json:"input"`
	Ranking fetch.Result[*BestSellersView] `json:"ranking"`
}

// NewBestSellers creates the top products controller
func NewBestSellers(deps Deps) *BestSellers {
	b := &BestSellers{
		deps:    deps,
		ranking: newQuery[*models.BestSellersResponse](deps, "analysis.best_sellers", "No sales recorded for this month"),
	}
	b.input = b.withDefaults(BestSellersInput{})
	return b
}

// Load ranks the month described by in. Invalid input is rejected without
// a request and the previous input kept.
func (b *BestSellers) Load(ctx context.Context, in BestSellersInput) (BestSellersSnapshot, error) {
	in = b.withDefaults(in)
	if err := validateInput(in); err != nil {
		return b.Snapshot(), err
	}

	b.mu.Lock()
	b.input = in
	b.mu.Unlock()

	key := fmt.Sprintf("%04d-%02d/%d", in.Year, in.Month, in.TopN)
	b.ranking.RunKeyed(ctx, key, func(ctx context.Context) (*models.BestSellersResponse, error) {
		return b.deps.API.BestSellers(ctx, in.Year, in.Month, in.TopN)
	})
	return b.Snapshot(), nil
}

// Reload ranks again with the last accepted input
func (b *BestSellers) Reload(ctx context.Context) (BestSellersSnapshot, error) {
	b.mu.Lock()
	in := b.input
	b.mu.Unlock()
	return b.Load(ctx, in)
}

// Snapshot returns the current state
func (b *BestSellers) Snapshot() BestSellersSnapshot {
	b.mu.Lock()
	in := b.input
	b.mu.Unlock()

	return BestSellersSnapshot{
		Input: in,
		Ranking: fetch.Map(b.ranking.Result(), func(r *models.BestSellersResponse) *BestSellersView {
			rows := slices.Clone(r.Data)
			sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
			return &BestSellersView{Rows: rows, Chart: charts.NewRankedBars(rows)}
		}),
	}
}

func (b *BestSellers) withDefaults(in BestSellersInput) BestSellersInput {
	now := b.deps.now()
	if in.Year == 0 {
		in.Year = now.Year()
	}
	if in.Month == 0 {
		in.Month = int(now.Month())
	}
	if in.TopN == 0 {
		in.TopN = DefaultTopN
	}
	return in
}

func (b *BestSellers) reset() {
	b.ranking.Reset()
}
