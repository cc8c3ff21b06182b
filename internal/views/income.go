package views

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/charts"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// IncomeFilter narrows the income report. Both fields are optional.
type IncomeFilter struct {
	ProductSKU string `json:"product_sku" validate:"max=64"`
	Category   string `json:"category" validate:"max=64"`
}

// IncomeView is a successful income report shaped for display
type IncomeView struct {
	Table      []models.IncomeRow  `json:"table"`
	Chart      charts.IncomeSeries `json:"chart"`
	GrandTotal decimal.Decimal     `json:"grandTotal"`
}

// Income is the total revenue tab
type Income struct {
	deps   Deps
	report *fetch.Query[*models.TotalIncomeResponse]

	mu     sync.Mutex
	filter IncomeFilter
}

// IncomeSnapshot is the JSON view of the revenue tab
type IncomeSnapshot struct {
	Filter IncomeFilter              `json:"filter"`
	Report fetch.Result[*IncomeView] `json:"report"`
}

// NewIncome creates the revenue tab controller
func NewIncome(deps Deps) *Income {
	return &Income{
		deps:   deps,
		report: newQuery[*models.TotalIncomeResponse](deps, "analysis.total_income", "No income data found"),
	}
}

// Load fetches the report for filter
func (i *Income) Load(ctx context.Context, filter IncomeFilter) (IncomeSnapshot, error) {
	filter.ProductSKU = strings.TrimSpace(filter.ProductSKU)
	filter.Category = strings.TrimSpace(filter.Category)
	if err := validateInput(filter); err != nil {
		return i.Snapshot(), err
	}

	i.mu.Lock()
	i.filter = filter
	i.mu.Unlock()

	i.report.RunKeyed(ctx, filter.ProductSKU+"|"+filter.Category, func(ctx context.Context) (*models.TotalIncomeResponse, error) {
		return i.deps.API.TotalIncome(ctx, filter.ProductSKU, filter.Category)
	})
	return i.Snapshot(), nil
}

// Reload fetches again with the last filter
func (i *Income) Reload(ctx context.Context) (IncomeSnapshot, error) {
	i.mu.Lock()
	filter := i.filter
	i.mu.Unlock()
	return i.Load(ctx, filter)
}

// Snapshot returns the current state
func (i *Income) Snapshot() IncomeSnapshot {
	i.mu.Lock()
	filter := i.filter
	i.mu.Unlock()

	return IncomeSnapshot{
		Filter: filter,
		Report: fetch.Map(i.report.Result(), func(r *models.TotalIncomeResponse) *IncomeView {
			chart := charts.NewIncomeSeries(r.ChartData)
			total := r.GrandTotal
			if total.IsZero() {
				total = chart.Total
			}
			return &IncomeView{Table: r.TableData, Chart: chart, GrandTotal: total}
		}),
	}
}

func (i *Income) reset() {
	i.report.Reset()
}
