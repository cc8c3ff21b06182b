package handlers_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/apiclient"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/connectivity"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/events"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/handlers"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/views"
)

const adminKey = "test-admin-key"

// backend is a fake stock API counting the requests it serves
type backend struct {
	server *httptest.Server

	mu     sync.Mutex
	bodies map[string]string
	calls  map[string]int
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{bodies: map[string]string{}, calls: map[string]int{}}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.URL.Path]++
		body, ok := b.bodies[r.URL.Path]
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) respond(path, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bodies[path] = body
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

type gateway struct {
	handler http.Handler
	session *views.Session
	feed    *events.Feed
}

func newGateway(t *testing.T, baseURL string) *gateway {
	t.Helper()
	feed := events.NewFeed(events.FeedConfig{MaxEvents: 100})
	client := apiclient.New(apiclient.Config{BaseURL: baseURL, Timeout: 2 * time.Second})
	session := views.NewSession(views.Deps{
		API:     client,
		Tracker: connectivity.NewTracker(nil),
		Notify: func(c fetch.Change) {
			feed.Publish(models.SourceView, c.Query, string(c.Status), c.Seq, c.Message)
		},
		Now: func() time.Time { return time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC) },
	}, views.SessionConfig{LowStockThreshold: 50})
	t.Cleanup(session.Close)

	return &gateway{
		handler: handlers.NewRouter(handlers.RouterConfig{
			Session:      session,
			Feed:         feed,
			APIBaseURL:   baseURL,
			AdminAPIKeys: adminKey,
		}),
		session: session,
		feed:    feed,
	}
}

func (g *gateway) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b.server.URL)

	rec := g.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(apiclient.RequestIDHeader))

	health := decode[models.GatewayHealth](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "online", health.BackendState)
	assert.True(t, health.BackendConnected)
	assert.Equal(t, 0, b.total())
}

func TestRequiredInputIs422WithSnapshot(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b.server.URL)

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodPost, "/v1/analysis/historical/search", `{"sku":"  "}`},
		{http.MethodPost, "/v1/analysis/performance/compare", ""},
		{http.MethodPost, "/v1/analysis/performance/apply", `{"skus":[]}`},
		{http.MethodPost, "/v1/stocks/upload/sale", ""},
		{http.MethodPost, "/v1/stocks/files/product", ""},
	} {
		rec := g.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, tc.path)

		resp := decode[map[string]any](t, rec)
		assert.Equal(t, "input_required", resp["code"], tc.path)
		assert.NotNil(t, resp["snapshot"], tc.path)
	}

	assert.Equal(t, 0, b.total(), "rejected actions must not reach the API")
}

func TestInvalidJSONIs400(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b.server.URL)

	rec := g.do(t, http.MethodPost, "/v1/analysis/historical/search", `{"sku":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decode[models.ErrorResponse](t, rec).Code)
}

func TestHistoricalSearchAndChart(t *testing.T) {
	b := newBackend(t)
	b.respond("/analysis/historical", `{"success":true,"chart_data":[{"month":"2025-01","S":3,"M":2},{"month":"2025-02","S":1}],"table_data":[{"sku":"A"}],"sizes":["S","M"]}`)
	g := newGateway(t, b.server.URL)

	rec := g.do(t, http.MethodGet, "/v1/analysis/historical/chart.svg", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no chart before the first search")

	rec = g.do(t, http.MethodPost, "/v1/analysis/historical/search", `{"sku":"A"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[views.HistoricalSnapshot](t, rec)
	assert.Equal(t, fetch.StatusSuccess, snap.Sales.Status)
	require.NotNil(t, snap.Sales.Data)
	assert.Equal(t, []string{"S", "M"}, snap.Sales.Data.Chart.Keys)

	rec = g.do(t, http.MethodGet, "/v1/analysis/historical/chart.svg?width=400&height=200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = g.do(t, http.MethodGet, "/v1/analysis/nope/chart.svg", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPerformanceSelectionNeverFetches(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b.server.URL)

	for _, sku := range []string{"A", "B", "C", "D"} {
		rec := g.do(t, http.MethodPost, "/v1/analysis/performance/selection/"+sku, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := g.do(t, http.MethodDelete, "/v1/analysis/performance/selection/B", "")
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decode[views.PerformanceSnapshot](t, rec)
	assert.Equal(t, []string{"A", "C"}, snap.Selected)
	assert.Equal(t, fetch.StatusIdle, snap.Comparison.Status)

	rec = g.do(t, http.MethodPost, "/v1/analysis/performance/selection/reset", "")
	assert.Empty(t, decode[views.PerformanceSnapshot](t, rec).Selected)
	assert.Equal(t, 0, b.total())
}

func TestAnalysisTabs(t *testing.T) {
	b := newBackend(t)
	b.respond("/analysis/best_sellers", `{"success":true,"data":[{"rank":2,"base_sku":"PA","name":"Pants","size":"M","quantity":3},{"rank":1,"base_sku":"SH","name":"Shirt","size":"L","quantity":5}]}`)
	g := newGateway(t, b.server.URL)

	rec := g.do(t, http.MethodPost, "/v1/analysis/tabs/unknown", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodPost, "/v1/analysis/tabs/sellers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[views.AnalysisSnapshot](t, rec)
	assert.Equal(t, views.TabBestSellers, snap.Active)
	require.Equal(t, fetch.StatusSuccess, snap.BestSellers.Ranking.Status)
	assert.EqualValues(t, 1, snap.BestSellers.Ranking.Data.Rows[0].Rank)

	rec = g.do(t, http.MethodGet, "/v1/analysis/bestsellers/chart.svg", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = g.do(t, http.MethodPost, "/v1/analysis/bestsellers/load", `{"year":2025,"month":13}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_input", decode[models.ErrorResponse](t, rec).Code)
}

func TestNotificationsFilterAndExport(t *testing.T) {
	b := newBackend(t)
	b.respond("/api/notifications", `[
		{"Product":"Shirt A","Stock":5,"Last_Stock":20,"Decrease_Rate(%)":12.5,"Weeks_To_Empty":0.4,"MinStock":10,"Buffer":3,"Reorder_Qty":15,"Status":"Red","Description":"สินค้าใกล้หมดสต๊อก"},
		{"Product":"Hat C","Stock":90,"Last_Stock":91,"Decrease_Rate(%)":1,"Weeks_To_Empty":12,"MinStock":10,"Buffer":2,"Reorder_Qty":0,"Status":"Green","Description":"ok"}
	]`)
	g := newGateway(t, b.server.URL)

	rec := g.do(t, http.MethodPost, "/v1/notifications/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[views.NotificationsSnapshot](t, rec).Items.Data, 2)

	rec = g.do(t, http.MethodPut, "/v1/notifications/filter", `{"statuses":["critical"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[views.NotificationsSnapshot](t, rec).Items.Data
	require.Len(t, items, 1)
	assert.Equal(t, "critical", items[0].Status)

	rec = g.do(t, http.MethodPut, "/v1/notifications/filter", `{"statuses":["purple"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodGet, "/v1/notifications/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "notifications.csv")
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Status", rows[0][0])

	rec = g.do(t, http.MethodDelete, "/v1/notifications/filter", "")
	assert.Len(t, decode[views.NotificationsSnapshot](t, rec).Items.Data, 2)
}

func TestStocksUploadFlow(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b.server.URL)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "sales.csv")
	require.NoError(t, err)
	part.Write([]byte("sku,qty\nA,1\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/stocks/files/sale", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[views.StocksSnapshot](t, rec)
	require.Len(t, snap.Staged, 1)
	assert.Equal(t, "sales.csv", snap.Staged[0].Filename)

	rec = g.do(t, http.MethodPost, "/v1/stocks/upload/sale", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[views.StocksSnapshot](t, rec).UploadMessage, "Please upload the product file")
	assert.Equal(t, 0, b.total(), "training waits for both files")

	rec = g.do(t, http.MethodPost, "/v1/stocks/files/invoice", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictForecastValidation(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b.server.URL)

	rec := g.do(t, http.MethodPost, "/v1/predict/forecast", `{"n_forecast":99}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = g.do(t, http.MethodPost, "/v1/predict/forecast?n_forecast=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, b.total())
}

func TestConnectivityBannerAndDismiss(t *testing.T) {
	b := newBackend(t)
	url := b.server.URL
	b.server.Close()
	g := newGateway(t, url)

	rec := g.do(t, http.MethodPost, "/v1/dashboard/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fetch.StatusError, decode[views.DashboardSnapshot](t, rec).Stats.Status)

	rec = g.do(t, http.MethodGet, "/v1/connectivity", "")
	conn := decode[connectivity.Snapshot](t, rec)
	assert.Equal(t, connectivity.Unreachable, conn.State)
	assert.False(t, conn.BackendConnected)
	assert.True(t, conn.ShowOfflineBanner)

	rec = g.do(t, http.MethodPost, "/v1/connectivity/dismiss", "")
	conn = decode[connectivity.Snapshot](t, rec)
	assert.False(t, conn.ShowOfflineBanner)
	assert.False(t, conn.BackendConnected, "dismissing the banner does not reconnect")

	rec = g.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "the gateway stays healthy while the API is down")
	assert.False(t, decode[models.GatewayHealth](t, rec).BackendConnected)
}

func TestEventsFeed(t *testing.T) {
	b := newBackend(t)
	b.respond("/analysis/dashboard", `{"success":true,"data":{"total_stock_items":3,"low_stock_alerts":1,"sales_this_month":99.5,"out_of_stock":1}}`)
	g := newGateway(t, b.server.URL)

	rec := g.do(t, http.MethodGet, "/v1/events?offset=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[models.EventsResponse](t, rec).Count)

	g.do(t, http.MethodPost, "/v1/dashboard/load", "")

	rec = g.do(t, http.MethodGet, "/v1/events?offset=0&wait=1", "")
	resp := decode[models.EventsResponse](t, rec)
	require.NotEmpty(t, resp.Events)
	last := resp.Events[len(resp.Events)-1]
	assert.Equal(t, models.SourceView, last.Source)
	assert.Equal(t, "dashboard.stats", last.Name)
	assert.Equal(t, string(fetch.StatusSuccess), last.Status)
	assert.Equal(t, g.feed.CurrentOffset(), resp.NextOffset)

	rec = g.do(t, http.MethodGet, "/v1/events?offset=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsLongPollWakesOnPublish(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b.server.URL)

	go func() {
		time.Sleep(50 * time.Millisecond)
		g.feed.Publish(models.SourceConnectivity, "api", "unreachable", 0, "")
	}()

	start := time.Now()
	rec := g.do(t, http.MethodGet, "/v1/events?offset=0&wait=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[models.EventsResponse](t, rec).Count)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestAdminRoutesRequireKey(t *testing.T) {
	b := newBackend(t)
	g := newGateway(t, b.server.URL)

	rec := g.do(t, http.MethodGet, "/v1/admin/rate-limit/status", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/rate-limit/status", nil)
	req.Header.Set("X-API-Key", adminKey)
	rec = httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	// no limiter is configured in tests
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
