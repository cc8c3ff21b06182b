package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCalls struct {
	mu    sync.Mutex
	calls []Call
}

func (r *recordedCalls) RecordCall(_ context.Context, call Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordedCalls) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	recorder := &recordedCalls{}
	return New(Config{BaseURL: server.URL + "/", Timeout: time.Second, Recorder: recorder}), recorder
}

func TestNew_Defaults(t *testing.T) {
	client := New(Config{BaseURL: "http://stock-api:8000/"})
	assert.Equal(t, "http://stock-api:8000", client.BaseURL())
	assert.Equal(t, DefaultTimeout, client.Timeout())

	client = New(Config{BaseURL: "http://stock-api:8000", Timeout: 3 * time.Second})
	assert.Equal(t, 3*time.Second, client.Timeout())
}

func TestDashboardStats_Success(t *testing.T) {
	client, recorder := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analysis/dashboard", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.Write([]byte(`{"success":true,"data":{"total_stock_items":120,"low_stock_alerts":4,"sales_this_month":15230.50,"out_of_stock":2}}`))
	})

	resp, err := client.DashboardStats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Data)

	assert.True(t, resp.OK())
	assert.Equal(t, 1, resp.Rows())
	assert.EqualValues(t, 120, resp.Data.TotalStockItems)
	assert.True(t, decimal.RequireFromString("15230.5").Equal(resp.Data.SalesThisMonth))

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, ClassNone, recorder.calls[0].Outcome)
	assert.Equal(t, http.StatusOK, recorder.calls[0].StatusCode)
}

func TestSuccessFalseIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NOPE-404", r.URL.Query().Get("sku"))
		w.Write([]byte(`{"success":false,"message":"No data found","chart_data":[],"table_data":[],"sizes":[]}`))
	})

	resp, err := client.HistoricalSales(context.Background(), "NOPE-404")
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "No data found", resp.ServerMessage())
	assert.Equal(t, 0, resp.Rows())
}

func TestNon2xx_UsesDetail(t *testing.T) {
	client, recorder := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Product not found"}`))
	})

	_, err := client.NotificationDetail(context.Background(), "Shirt A")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Product not found", err.Error())
	assert.Equal(t, ClassServerError, Classify(err))
	assert.Equal(t, "/api/notifications/{product}", recorder.calls[0].Endpoint)
}

func TestNon2xx_GenericMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.StockLevels(context.Background())
	require.Error(t, err)
	assert.Equal(t, "API Error: 500", err.Error())
}

func TestNon2xx_StructuredDetail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["query","year"],"msg":"field required"}]}`))
	})

	_, err := client.BestSellers(context.Background(), 2025, 3, 10)
	require.Error(t, err)
	assert.Equal(t, `[{"loc":["query","year"],"msg":"field required"}]`, err.Error())
}

func TestTransportFailure_NamesBaseURL(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := New(Config{BaseURL: baseURL, Timeout: time.Second})
	_, err := client.Notifications(context.Background())
	require.Error(t, err)

	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "Cannot connect to backend. Make sure the backend server is running on "+baseURL, err.Error())
	assert.Equal(t, ClassUnreachable, Classify(err))
}

func TestTimeoutIsConnectivityError(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	client.httpClient.Timeout = 50 * time.Millisecond

	_, err := client.Health(context.Background())
	assert.Equal(t, ClassUnreachable, Classify(err))
}

func TestCanceledRequest(t *testing.T) {
	release := make(chan struct{})
	client, recorder := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.SearchSuggestions(ctx, "SH")
	assert.Equal(t, ClassCanceled, Classify(err))
	assert.Equal(t, ClassCanceled, recorder.calls[0].Outcome)
}

func TestDecodeError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":"not-a-list"}`))
	})

	_, err := client.StockLevels(context.Background())
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "/stock/levels", decodeErr.Endpoint)
	assert.Equal(t, ClassServerError, Classify(err))
}

func TestPerformanceComparison_PostsJSONArray(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var skus []string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&skus))
		assert.Equal(t, []string{"A", "B"}, skus)

		w.Write([]byte(`{"success":true,"table_data":[{"Item":"A","Product_name":"Shirt","Quantity":3}],
			"chart_data":{"A":[{"month":1,"value":3}],"B":[{"month":2,"value":5}]}}`))
	})

	resp, err := client.PerformanceComparison(context.Background(), []string{"A", "B"})
	require.NoError(t, err)
	assert.Len(t, resp.ChartData, 2)
	assert.Equal(t, "1", string(resp.ChartData["A"][0].Month))
}

func TestTotalIncome_OmitsEmptyFilters(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "", r.URL.RawQuery)
		w.Write([]byte(`{"success":true,"table_data":[],"chart_data":[{"month":1,"total_income":100.25},{"month":2,"income":50}],"grand_total":150.25}`))
	})

	resp, err := client.TotalIncome(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, resp.ChartData, 2)
	assert.True(t, decimal.RequireFromString("100.25").Equal(resp.ChartData[0].Income))
	assert.True(t, decimal.NewFromInt(50).Equal(resp.ChartData[1].Income))
	assert.True(t, decimal.RequireFromString("150.25").Equal(resp.GrandTotal))
}

func TestForecast_Query(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "6", r.URL.Query().Get("n_forecast"))
		w.Write([]byte(`{"status":"success","forecast_rows":1,"n_forecast":6,"forecast":[{"product_sku":"A","forecast_date":"2025-04","predicted_sales":12.5,"current_sales":10,"current_date_col":"2025-03"}]}`))
	})

	resp, err := client.Forecast(context.Background(), 6)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, 1, resp.Rows())
}

func TestTrainModel_Multipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		sales, header, err := r.FormFile("sales_file")
		require.NoError(t, err)
		content, _ := io.ReadAll(sales)
		assert.Equal(t, "sales.csv", header.Filename)
		assert.Equal(t, "sku,qty\nA,1\n", string(content))

		_, _, err = r.FormFile("product_file")
		assert.ErrorIs(t, err, http.ErrMissingFile)

		w.Write([]byte(`{"rows_uploaded":1,"status":"success"}`))
	})

	resp, err := client.TrainModel(context.Background(), &Upload{Filename: "sales.csv", Content: []byte("sku,qty\nA,1\n")}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.RowsUploaded)
}

func TestTrainModel_FailureDefaultsDetail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.TrainModel(context.Background(), &Upload{Filename: "s.csv"}, &Upload{Filename: "p.csv"})
	require.Error(t, err)
	assert.Equal(t, "Training failed", err.Error())
}

func TestTrainModel_RequiresSalesFile(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := client.TrainModel(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoSalesFile)
}

func TestRequestIDPropagation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-123", r.Header.Get(RequestIDHeader))
		w.Write([]byte(`{"status":"ok"}`))
	})

	health, err := client.Health(WithRequestID(context.Background(), "req-123"))
	require.NoError(t, err)
	assert.Equal(t, "ok", health["status"])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassNone},
		{"connectivity", &ConnectivityError{BaseURL: "x"}, ClassUnreachable},
		{"api", &APIError{Status: 500}, ClassServerError},
		{"decode", &DecodeError{Endpoint: "/x"}, ClassServerError},
		{"canceled", context.Canceled, ClassCanceled},
		{"unknown", io.ErrUnexpectedEOF, ClassUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
