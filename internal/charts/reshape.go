// Package charts derives chart-ready datasets from API payloads. Every
// function builds new slices and maps; inputs are never modified.
package charts

import (
	"encoding/json"
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// StackedBars holds one bar per label, stacked by key (size S/M/L/XL...)
type StackedBars struct {
	Labels []models.Month       `json:"labels"`
	Keys   []string             `json:"keys"`
	Series map[string][]float64 `json:"series"`
	Totals []float64            `json:"totals"`
}

// NewStackedBars reshapes historical chart rows. Keys follow sizes when
// given, then any other column found in the rows, sorted. A size missing
// from a month stacks as zero.
func NewStackedBars(rows []models.SizeBreakdown, sizes []string) StackedBars {
	sorted := slices.Clone(rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Month.Less(sorted[j].Month) })

	seen := make(map[string]bool)
	keys := make([]string, 0, len(sizes))
	for _, size := range sizes {
		if !seen[size] {
			seen[size] = true
			keys = append(keys, size)
		}
	}
	var extra []string
	for _, row := range sorted {
		for key := range row.Values {
			if !seen[key] {
				seen[key] = true
				extra = append(extra, key)
			}
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	out := StackedBars{
		Labels: make([]models.Month, len(sorted)),
		Keys:   keys,
		Series: make(map[string][]float64, len(keys)),
		Totals: make([]float64, len(sorted)),
	}
	for _, key := range keys {
		out.Series[key] = make([]float64, len(sorted))
	}
	for i, row := range sorted {
		out.Labels[i] = row.Month
		for _, key := range keys {
			v := row.Values[key]
			out.Series[key][i] = v
			out.Totals[i] += v
		}
	}
	return out
}

// LinePoint is one x position of a merged line chart. A nil value means the
// series has no point for that month.
type LinePoint struct {
	Month  models.Month
	Values map[string]*float64
}

// MarshalJSON flattens the point to {"month": m, "<key>": v|null, ...}
func (p LinePoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Values)+1)
	for k, v := range p.Values {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = *v
	}
	out["month"] = p.Month
	return json.Marshal(out)
}

// LineSeries is multi-series line data merged on month
type LineSeries struct {
	Keys   []string    `json:"keys"`
	Points []LinePoint `json:"points"`
}

// Values returns the series of key in month order, nil-filled
func (l LineSeries) Values(key string) []*float64 {
	out := make([]*float64, len(l.Points))
	for i, p := range l.Points {
		out[i] = p.Values[key]
	}
	return out
}

// MergeLines builds one series per key of series, merged by month. Keys
// listed in order come first in that order; the rest follow sorted.
// Months missing from a series are filled with nil.
func MergeLines(series map[string][]models.MonthValue, order []string) LineSeries {
	keys := orderedKeys(series, order)

	months := make([]models.Month, 0)
	index := make(map[models.Month]int)
	for _, key := range keys {
		for _, point := range series[key] {
			if _, ok := index[point.Month]; !ok {
				index[point.Month] = 0
				months = append(months, point.Month)
			}
		}
	}
	sort.SliceStable(months, func(i, j int) bool { return months[i].Less(months[j]) })

	points := make([]LinePoint, len(months))
	for i, month := range months {
		index[month] = i
		values := make(map[string]*float64, len(keys))
		for _, key := range keys {
			values[key] = nil
		}
		points[i] = LinePoint{Month: month, Values: values}
	}
	for _, key := range keys {
		for _, point := range series[key] {
			v := point.Value
			points[index[point.Month]].Values[key] = &v
		}
	}

	return LineSeries{Keys: keys, Points: points}
}

// ScatterPoint is one {month, value} dot
type ScatterPoint struct {
	Month models.Month `json:"month"`
	Value float64      `json:"value"`
}

// ScatterSeries is the dots of one SKU
type ScatterSeries struct {
	Key    string         `json:"key"`
	Points []ScatterPoint `json:"points"`
}

// Scatter returns one month-sorted point series per key
func Scatter(series map[string][]models.MonthValue, order []string) []ScatterSeries {
	keys := orderedKeys(series, order)
	out := make([]ScatterSeries, 0, len(keys))
	for _, key := range keys {
		points := make([]ScatterPoint, len(series[key]))
		for i, p := range series[key] {
			points[i] = ScatterPoint{Month: p.Month, Value: p.Value}
		}
		sort.SliceStable(points, func(i, j int) bool { return points[i].Month.Less(points[j].Month) })
		out = append(out, ScatterSeries{Key: key, Points: points})
	}
	return out
}

// IncomeSeries is the monthly revenue line
type IncomeSeries struct {
	Labels []models.Month    `json:"labels"`
	Values []decimal.Decimal `json:"values"`
	Total  decimal.Decimal   `json:"total"`
}

// NewIncomeSeries sorts income points by month and sums them
func NewIncomeSeries(points []models.IncomePoint) IncomeSeries {
	sorted := slices.Clone(points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Month.Less(sorted[j].Month) })

	out := IncomeSeries{
		Labels: make([]models.Month, len(sorted)),
		Values: make([]decimal.Decimal, len(sorted)),
		Total:  decimal.Zero,
	}
	for i, p := range sorted {
		out.Labels[i] = p.Month
		out.Values[i] = p.Income
		out.Total = out.Total.Add(p.Income)
	}
	return out
}

// RankedBars is a single-series bar dataset in rank order
type RankedBars struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// NewRankedBars labels each best seller "<base_sku> <size>" in rank order
func NewRankedBars(rows []models.BestSeller) RankedBars {
	sorted := slices.Clone(rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	out := RankedBars{
		Labels: make([]string, len(sorted)),
		Values: make([]float64, len(sorted)),
	}
	for i, row := range sorted {
		label := row.BaseSKU
		if row.Size != "" {
			label += " " + row.Size
		}
		out.Labels[i] = label
		out.Values[i] = row.Quantity
	}
	return out
}

func orderedKeys(series map[string][]models.MonthValue, order []string) []string {
	keys := make([]string, 0, len(series))
	seen := make(map[string]bool, len(series))
	for _, key := range order {
		if _, ok := series[key]; ok && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	var rest []string
	for key := range series {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Stacked turns the ranking into a one-key bar dataset for rendering
func (r RankedBars) Stacked(key string) StackedBars {
	out := StackedBars{
		Labels: make([]models.Month, len(r.Labels)),
		Keys:   []string{key},
		Series: map[string][]float64{key: slices.Clone(r.Values)},
		Totals: slices.Clone(r.Values),
	}
	for i, label := range r.Labels {
		out.Labels[i] = models.Month(label)
	}
	return out
}

// Lines turns the income series into a one-key line dataset for rendering
func (s IncomeSeries) Lines(key string) LineSeries {
	points := make([]LinePoint, len(s.Labels))
	for i, month := range s.Labels {
		v := s.Values[i].InexactFloat64()
		points[i] = LinePoint{Month: month, Values: map[string]*float64{key: &v}}
	}
	return LineSeries{Keys: []string{key}, Points: points}
}
