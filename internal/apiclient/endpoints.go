package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// DashboardStats retrieves the home page counters
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardResponse, error) {
	return doJSON[models.DashboardResponse](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/analysis/dashboard",
		path:     "/analysis/dashboard",
	})
}

// StockLevels retrieves the current stock of every product
func (c *Client) StockLevels(ctx context.Context) (*models.StockLevelsResponse, error) {
	return doJSON[models.StockLevelsResponse](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/stock/levels",
		path:     "/stock/levels",
	})
}

// HistoricalSales retrieves monthly sales for a SKU or category
func (c *Client) HistoricalSales(ctx context.Context, sku string) (*models.HistoricalResponse, error) {
	return doJSON[models.HistoricalResponse](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/analysis/historical",
		path:     "/analysis/historical",
		query:    url.Values{"sku": {sku}},
	})
}

// PerformanceComparison compares monthly sales of the given SKUs
func (c *Client) PerformanceComparison(ctx context.Context, skus []string) (*models.PerformanceResponse, error) {
	if skus == nil {
		skus = []string{}
	}
	body, err := jsonBody(skus)
	if err != nil {
		return nil, err
	}
	return doJSON[models.PerformanceResponse](ctx, c, request{
		method:   http.MethodPost,
		endpoint: "/analysis/performance",
		path:     "/analysis/performance",
		body:     body,
	})
}

// BestSellers retrieves the top selling products of a month
func (c *Client) BestSellers(ctx context.Context, year, month, topN int) (*models.BestSellersResponse, error) {
	return doJSON[models.BestSellersResponse](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/analysis/best_sellers",
		path:     "/analysis/best_sellers",
		query: url.Values{
			"year":  {strconv.Itoa(year)},
			"month": {strconv.Itoa(month)},
			"top_n": {strconv.Itoa(topN)},
		},
	})
}

// TotalIncome retrieves revenue per product and month. Empty filters are omitted.
func (c *Client) TotalIncome(ctx context.Context, productSKU, category string) (*models.TotalIncomeResponse, error) {
	query := url.Values{}
	if productSKU != "" {
		query.Set("product_sku", productSKU)
	}
	if category != "" {
		query.Set("category", category)
	}
	return doJSON[models.TotalIncomeResponse](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/analysis/total_income",
		path:     "/analysis/total_income",
		query:    query,
	})
}

// BaseSKUs lists base SKUs containing search
func (c *Client) BaseSKUs(ctx context.Context, search string) (*models.BaseSKUsResponse, error) {
	return doJSON[models.BaseSKUsResponse](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/analysis/base_skus",
		path:     "/analysis/base_skus",
		query:    url.Values{"search": {search}},
	})
}

// SearchSuggestions retrieves autocomplete entries for a partial SKU or category
func (c *Client) SearchSuggestions(ctx context.Context, term string) (*models.SuggestionsResponse, error) {
	return doJSON[models.SuggestionsResponse](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/analysis/search_suggestions",
		path:     "/analysis/search_suggestions",
		query:    url.Values{"search": {term}},
	})
}

// Products retrieves the product catalog grouped by category
func (c *Client) Products(ctx context.Context, search string) (*models.ProductsResponse, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	return doJSON[models.ProductsResponse](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/analysis/products",
		path:     "/analysis/products",
		query:    query,
	})
}

// Notifications retrieves every low-stock alert
func (c *Client) Notifications(ctx context.Context) (models.NotificationList, error) {
	list, err := doJSON[models.NotificationList](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/api/notifications",
		path:     "/api/notifications",
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// NotificationDetail retrieves the alert of a single product
func (c *Client) NotificationDetail(ctx context.Context, product string) (*models.Notification, error) {
	return doJSON[models.Notification](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/api/notifications/{product}",
		path:     "/api/notifications/" + url.PathEscape(product),
	})
}

// Health checks that the API answers
func (c *Client) Health(ctx context.Context) (models.HealthStatus, error) {
	health, err := doJSON[models.HealthStatus](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/health",
		path:     "/health",
	})
	if err != nil {
		return nil, err
	}
	return *health, nil
}

// Forecast runs the sales model for the next n months
func (c *Client) Forecast(ctx context.Context, n int) (*models.ForecastResponse, error) {
	return doJSON[models.ForecastResponse](ctx, c, request{
		method:   http.MethodPost,
		endpoint: "/predict",
		path:     "/predict",
		query:    url.Values{"n_forecast": {strconv.Itoa(n)}},
	})
}

// ExistingForecasts retrieves forecasts stored by a previous run
func (c *Client) ExistingForecasts(ctx context.Context) (*models.ForecastResponse, error) {
	return doJSON[models.ForecastResponse](ctx, c, request{
		method:   http.MethodGet,
		endpoint: "/predict/existing",
		path:     "/predict/existing",
	})
}

// ClearForecasts deletes every stored forecast
func (c *Client) ClearForecasts(ctx context.Context) (*models.ClearResponse, error) {
	return doJSON[models.ClearResponse](ctx, c, request{
		method:   http.MethodDelete,
		endpoint: "/predict/clear",
		path:     "/predict/clear",
	})
}
