package handlers

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/charts"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/views"
)

// AnalysisHandler serves the four-tab analysis page
type AnalysisHandler struct {
	analysis *views.Analysis
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysis *views.Analysis) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

// Get handles GET /v1/analysis
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.analysis.Snapshot())
}

// Activate handles POST /v1/analysis/tabs/{tab}
func (h *AnalysisHandler) Activate(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.analysis.Activate(r.Context(), views.Tab(mux.Vars(r)["tab"]))
	writeActionResponse(w, r, snapshot, err)
}

type queryRequest struct {
	Query string `json:"query"`
}

// Query handles POST /v1/analysis/historical/query. Suggestions load in the
// background; poll the snapshot or the event feed for them.
func (h *AnalysisHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.analysis.Historical.Suggestions.Type(r.Context(), req.Query))
}

type searchRequest struct {
	SKU string `json:"sku"`
}

// Search handles POST /v1/analysis/historical/search
func (h *AnalysisHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snapshot, err := h.analysis.Historical.Search(r.Context(), req.SKU)
	writeActionResponse(w, r, snapshot, err)
}

type chooseRequest struct {
	Value string `json:"value"`
}

// Choose handles POST /v1/analysis/historical/choose
func (h *AnalysisHandler) Choose(w http.ResponseWriter, r *http.Request) {
	var req chooseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snapshot, err := h.analysis.Historical.Choose(r.Context(), req.Value)
	writeActionResponse(w, r, snapshot, err)
}

// BaseSKUs handles GET /v1/analysis/historical/base-skus?search=
func (h *AnalysisHandler) BaseSKUs(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.analysis.Historical.LookupBaseSKUs(r.Context(), r.URL.Query().Get("search")))
}

// AddSelection handles POST /v1/analysis/performance/selection/{sku}
func (h *AnalysisHandler) AddSelection(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.analysis.Performance.Add(mux.Vars(r)["sku"]))
}

// RemoveSelection handles DELETE /v1/analysis/performance/selection/{sku}
func (h *AnalysisHandler) RemoveSelection(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.analysis.Performance.Remove(mux.Vars(r)["sku"]))
}

// ResetSelection handles POST /v1/analysis/performance/selection/reset
func (h *AnalysisHandler) ResetSelection(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.analysis.Performance.Reset())
}

type applyRequest struct {
	SKUs []string `json:"skus"`
}

// Apply handles POST /v1/analysis/performance/apply
func (h *AnalysisHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snapshot, err := h.analysis.Performance.Apply(r.Context(), req.SKUs)
	writeActionResponse(w, r, snapshot, err)
}

// Compare handles POST /v1/analysis/performance/compare
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.analysis.Performance.Compare(r.Context())
	writeActionResponse(w, r, snapshot, err)
}

type catalogRequest struct {
	Search string `json:"search"`
}

// Catalog handles POST /v1/analysis/performance/catalog
func (h *AnalysisHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.analysis.Performance.LoadCatalog(r.Context(), req.Search))
}

// BestSellers handles POST /v1/analysis/bestsellers/load
func (h *AnalysisHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	var req views.BestSellersInput
	if !decodeJSON(w, r, &req) {
		return
	}
	snapshot, err := h.analysis.BestSellers.Load(r.Context(), req)
	writeActionResponse(w, r, snapshot, err)
}

// Income handles POST /v1/analysis/income/load
func (h *AnalysisHandler) Income(w http.ResponseWriter, r *http.Request) {
	var req views.IncomeFilter
	if !decodeJSON(w, r, &req) {
		return
	}
	snapshot, err := h.analysis.Income.Load(r.Context(), req)
	writeActionResponse(w, r, snapshot, err)
}

// Chart handles GET /v1/analysis/{view}/chart.svg?width=&height=. It draws
// the chart of the view's last successful result; 404 when there is none.
func (h *AnalysisHandler) Chart(w http.ResponseWriter, r *http.Request) {
	tab, err := views.ParseTab(mux.Vars(r)["view"])
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "not_found", "Unknown chart", nil)
		return
	}

	width := queryInt(r, "width", charts.DefaultWidth)
	height := queryInt(r, "height", charts.DefaultHeight)

	svg, err := h.renderChart(tab, width, height)
	if err != nil {
		if errors.Is(err, charts.ErrNoData) {
			writeErrorResponse(w, http.StatusNotFound, "no_data", "Nothing to chart yet", nil)
			return
		}
		slog.Error("Failed to render chart", "view", tab, "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to render chart", nil)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}

func (h *AnalysisHandler) renderChart(tab views.Tab, width, height int) (template.HTML, error) {
	switch tab {
	case views.TabHistorical:
		snap := h.analysis.Historical.Snapshot()
		if snap.Sales.Data == nil {
			return "", charts.ErrNoData
		}
		return charts.Bars(width, height, snap.Sales.Data.Chart, charts.Opts{Title: "Sales history " + snap.SKU})
	case views.TabPerformance:
		snap := h.analysis.Performance.Snapshot()
		if snap.Comparison.Data == nil {
			return "", charts.ErrNoData
		}
		return charts.Lines(width, height, snap.Comparison.Data.Lines, charts.Opts{Title: "Product comparison", ShowDots: true})
	case views.TabBestSellers:
		snap := h.analysis.BestSellers.Snapshot()
		if snap.Ranking.Data == nil {
			return "", charts.ErrNoData
		}
		return charts.Bars(width, height, snap.Ranking.Data.Chart.Stacked("quantity"), charts.Opts{Title: "Best sellers"})
	default:
		snap := h.analysis.Income.Snapshot()
		if snap.Report.Data == nil {
			return "", charts.ErrNoData
		}
		return charts.Lines(width, height, snap.Report.Data.Chart.Lines("income"), charts.Opts{Title: "Total income", ShowDots: true})
	}
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 4096 {
			return v
		}
	}
	return defaultValue
}
