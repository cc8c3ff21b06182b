package views

import (
	"context"
	"strings"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/charts"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// PerformanceView is a successful comparison shaped for display. Series
// follow the order the SKUs were selected in.
type PerformanceView struct {
	SKUs    []string                `json:"skus"`
	Table   []models.PerformanceRow `json:"table"`
	Lines   charts.LineSeries       `json:"lines"`
	Scatter []charts.ScatterSeries  `json:"scatter"`
}

// Catalog is the product picker of the comparison dialog
type Catalog struct {
	Categories map[string][]models.ProductRef `json:"categories"`
	Products   []models.CatalogProduct        `json:"products"`
}

// comparison is a comparison response together with the SKUs it was
// requested for, in selection order
type comparison struct {
	*models.PerformanceResponse
	skus []string
}

// Performance is the product comparison tab. Changing the selection never
// fetches; only Compare and Apply do.
type Performance struct {
	deps       Deps
	selection  *SelectionSet
	comparison *fetch.Query[*comparison]
	catalog    *fetch.Query[*models.ProductsResponse]
}

// PerformanceSnapshot is the JSON view of the comparison tab
type PerformanceSnapshot struct {
	Selected   []string                       `json:"selected"`
	Comparison fetch.Result[*PerformanceView] `json:"comparison"`
	Catalog    fetch.Result[*Catalog]         `json:"catalog"`
}

// NewPerformance creates the comparison tab controller
func NewPerformance(deps Deps) *Performance {
	return &Performance{
		deps:       deps,
		selection:  NewSelectionSet(),
		comparison: newQuery[*comparison](deps, "analysis.performance", "No sales data for the selected products"),
		catalog:    newQuery[*models.ProductsResponse](deps, "analysis.products", "No products found"),
	}
}

// Add selects sku; see SelectionSet.Add
func (p *Performance) Add(sku string) PerformanceSnapshot {
	p.selection.Add(sku)
	return p.Snapshot()
}

// Remove deselects sku
func (p *Performance) Remove(sku string) PerformanceSnapshot {
	p.selection.Remove(sku)
	return p.Snapshot()
}

// Toggle flips sku's membership
func (p *Performance) Toggle(sku string) PerformanceSnapshot {
	p.selection.Toggle(sku)
	return p.Snapshot()
}

// Reset clears the selection. The last comparison stays on screen.
func (p *Performance) Reset() PerformanceSnapshot {
	p.selection.Reset()
	return p.Snapshot()
}

// Apply commits the dialog's selection and compares it. A selection with
// no usable SKU is rejected and the current one kept.
func (p *Performance) Apply(ctx context.Context, skus []string) (PerformanceSnapshot, error) {
	if NewSelectionSet(skus...).Len() == 0 {
		return p.Snapshot(), inputRequired("skus")
	}
	p.selection.Replace(skus)
	return p.Compare(ctx)
}

// Compare fetches the comparison for the current selection
func (p *Performance) Compare(ctx context.Context) (PerformanceSnapshot, error) {
	skus := p.selection.Items()
	if len(skus) == 0 {
		return p.Snapshot(), inputRequired("skus")
	}

	p.comparison.RunKeyed(ctx, strings.Join(skus, ","), func(ctx context.Context) (*comparison, error) {
		resp, err := p.deps.API.PerformanceComparison(ctx, skus)
		if err != nil {
			return nil, err
		}
		return &comparison{PerformanceResponse: resp, skus: skus}, nil
	})
	return p.Snapshot(), nil
}

// LoadCatalog fetches the products offered by the dialog
func (p *Performance) LoadCatalog(ctx context.Context, search string) PerformanceSnapshot {
	search = strings.TrimSpace(search)
	p.catalog.RunKeyed(ctx, search, func(ctx context.Context) (*models.ProductsResponse, error) {
		return p.deps.API.Products(ctx, search)
	})
	return p.Snapshot()
}

// Snapshot returns the current state
func (p *Performance) Snapshot() PerformanceSnapshot {
	return PerformanceSnapshot{
		Selected: p.selection.Items(),
		Comparison: fetch.Map(p.comparison.Result(), func(r *comparison) *PerformanceView {
			return &PerformanceView{
				SKUs:    r.skus,
				Table:   r.TableData,
				Lines:   charts.MergeLines(r.ChartData, r.skus),
				Scatter: charts.Scatter(r.ChartData, r.skus),
			}
		}),
		Catalog: fetch.Map(p.catalog.Result(), func(r *models.ProductsResponse) *Catalog {
			return &Catalog{Categories: r.Categories, Products: r.AllProducts}
		}),
	}
}

func (p *Performance) reset() {
	p.comparison.Reset()
	p.catalog.Reset()
}
