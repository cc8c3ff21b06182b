package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Record is a display-only table row whose columns vary with the query
type Record map[string]any

// SizeBreakdown is one month of the historical chart: quantity per size
type SizeBreakdown struct {
	Month  Month
	Values map[string]float64
}

// UnmarshalJSON reads {"month": ..., "<size>": <number>, ...}. A row keyed
// by "date" is accepted for older backends; non-numeric columns are skipped.
func (s *SizeBreakdown) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("historical chart row: %w", err)
	}

	s.Values = make(map[string]float64, len(raw))
	monthKey := "month"
	if _, ok := raw[monthKey]; !ok {
		monthKey = "date"
	}
	if m, ok := raw[monthKey]; ok {
		if err := json.Unmarshal(m, &s.Month); err != nil {
			return fmt.Errorf("historical chart row: %w", err)
		}
	}

	for key, value := range raw {
		if key == monthKey {
			continue
		}
		var v float64
		if err := json.Unmarshal(value, &v); err != nil {
			continue
		}
		s.Values[key] = v
	}
	return nil
}

// MarshalJSON flattens the row back into the chart-ready shape
func (s SizeBreakdown) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Values)+1)
	for k, v := range s.Values {
		out[k] = v
	}
	out["month"] = s.Month
	return json.Marshal(out)
}

// HistoricalResponse is returned by GET /analysis/historical
type HistoricalResponse struct {
	Envelope
	ChartData  []SizeBreakdown `json:"chart_data"`
	TableData  []Record        `json:"table_data"`
	Sizes      []string        `json:"sizes"`
	SearchType string          `json:"search_type,omitempty"`
}

func (r HistoricalResponse) Rows() int { return max(len(r.ChartData), len(r.TableData)) }

// MonthValue is one point of a per-SKU monthly series
type MonthValue struct {
	Month Month   `json:"month"`
	Value float64 `json:"value"`
}

// PerformanceRow is one table row of the comparison
type PerformanceRow struct {
	Item        string  `json:"Item"`
	ProductName string  `json:"Product_name"`
	Quantity    float64 `json:"Quantity"`
}

// PerformanceResponse is returned by POST /analysis/performance
type PerformanceResponse struct {
	Envelope
	TableData []PerformanceRow        `json:"table_data"`
	ChartData map[string][]MonthValue `json:"chart_data"`
}

func (r PerformanceResponse) Rows() int { return max(len(r.TableData), len(r.ChartData)) }

// BestSeller is one ranked row
type BestSeller struct {
	Rank     Count   `json:"rank"`
	BaseSKU  string  `json:"base_sku"`
	Name     string  `json:"name"`
	Size     string  `json:"size"`
	Quantity float64 `json:"quantity"`
}

// BestSellersResponse is returned by GET /analysis/best_sellers
type BestSellersResponse struct {
	Envelope
	Data []BestSeller `json:"data"`
}

func (r BestSellersResponse) Rows() int { return len(r.Data) }

// IncomeRow is one product of the total-income table
type IncomeRow struct {
	ProductSKU        string          `json:"Product_SKU"`
	ProductName       string          `json:"Product_name"`
	MonthsActive      Count           `json:"Months_Active"`
	TotalRevenue      decimal.Decimal `json:"Total_Revenue_Baht"`
	AvgMonthlyRevenue decimal.Decimal `json:"Avg_Monthly_Revenue_Baht"`
}

// IncomePoint is one month of the income chart
type IncomePoint struct {
	Month  Month           `json:"month"`
	Income decimal.Decimal `json:"income"`
}

// UnmarshalJSON accepts either "total_income" or "income" as the value column
func (p *IncomePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Month       Month            `json:"month"`
		Income      *decimal.Decimal `json:"income"`
		TotalIncome *decimal.Decimal `json:"total_income"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("income chart row: %w", err)
	}
	p.Month = raw.Month
	switch {
	case raw.TotalIncome != nil:
		p.Income = *raw.TotalIncome
	case raw.Income != nil:
		p.Income = *raw.Income
	default:
		p.Income = decimal.Zero
	}
	return nil
}

// TotalIncomeResponse is returned by GET /analysis/total_income
type TotalIncomeResponse struct {
	Envelope
	TableData  []IncomeRow     `json:"table_data"`
	ChartData  []IncomePoint   `json:"chart_data"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

func (r TotalIncomeResponse) Rows() int { return max(len(r.TableData), len(r.ChartData)) }

// BaseSKUsResponse is returned by GET /analysis/base_skus
type BaseSKUsResponse struct {
	Envelope
	BaseSKUs []string `json:"base_skus"`
	Total    Count    `json:"total"`
}

func (r BaseSKUsResponse) Rows() int { return len(r.BaseSKUs) }

// Suggestion is one autocomplete entry; Type is "sku" or "category"
type Suggestion struct {
	Value string `json:"value"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// SuggestionsResponse is returned by the search-suggestion endpoint
type SuggestionsResponse struct {
	Envelope
	Suggestions []Suggestion `json:"suggestions"`
}

func (r SuggestionsResponse) Rows() int { return len(r.Suggestions) }

// ProductRef identifies a product inside a category group
type ProductRef struct {
	ProductSKU  string `json:"product_sku"`
	ProductName string `json:"product_name"`
}

// CatalogProduct is one entry of the flat product list
type CatalogProduct struct {
	ProductSKU  string `json:"product_sku"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
}

// ProductsResponse is returned by the product catalog endpoint
type ProductsResponse struct {
	Envelope
	Categories  map[string][]ProductRef `json:"categories"`
	AllProducts []CatalogProduct        `json:"all_products"`
}

func (r ProductsResponse) Rows() int { return len(r.AllProducts) }
