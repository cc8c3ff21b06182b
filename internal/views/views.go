// Package views holds one controller per dashboard page. A controller owns
// the page's inputs and fetch results and exposes them as a JSON-ready
// snapshot; every user action is a method.
package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/apiclient"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/connectivity"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

var (
	// ErrInputRequired rejects an action whose required input is empty.
	// No request is issued and no state changes.
	ErrInputRequired = errors.New("required input is missing")
	// ErrInvalidInput rejects an action whose input is out of range
	ErrInvalidInput = errors.New("invalid input")
)

var validate = validator.New()

func inputRequired(field string) error {
	return fmt.Errorf("%w: %s", ErrInputRequired, field)
}

// validateInput checks the validate tags of input and reports every failing
// field as ErrInvalidInput
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s must satisfy %s=%s", fieldErr.Field(), fieldErr.Tag(), fieldErr.Param()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, "; "))
}

// API is the remote stock-management API as used by the controllers.
// *apiclient.Client implements it.
type API interface {
	DashboardStats(ctx context.Context) (*models.DashboardResponse, error)
	StockLevels(ctx context.Context) (*models.StockLevelsResponse, error)
	HistoricalSales(ctx context.Context, sku string) (*models.HistoricalResponse, error)
	PerformanceComparison(ctx context.Context, skus []string) (*models.PerformanceResponse, error)
	BestSellers(ctx context.Context, year, month, topN int) (*models.BestSellersResponse, error)
	TotalIncome(ctx context.Context, productSKU, category string) (*models.TotalIncomeResponse, error)
	BaseSKUs(ctx context.Context, search string) (*models.BaseSKUsResponse, error)
	SearchSuggestions(ctx context.Context, term string) (*models.SuggestionsResponse, error)
	Products(ctx context.Context, search string) (*models.ProductsResponse, error)
	Notifications(ctx context.Context) (models.NotificationList, error)
	NotificationDetail(ctx context.Context, product string) (*models.Notification, error)
	Health(ctx context.Context) (models.HealthStatus, error)
	TrainModel(ctx context.Context, sales, product *apiclient.Upload) (*models.TrainResponse, error)
	Forecast(ctx context.Context, n int) (*models.ForecastResponse, error)
	ExistingForecasts(ctx context.Context) (*models.ForecastResponse, error)
	ClearForecasts(ctx context.Context) (*models.ClearResponse, error)
}

// Deps are shared by every controller of a session
type Deps struct {
	API     API
	Tracker *connectivity.Tracker
	// Timeout bounds each fetch; zero leaves it to the API client
	Timeout time.Duration
	// Notify receives every query change. Optional.
	Notify func(fetch.Change)
	Logger *slog.Logger
	// Now is the clock used for date defaults
	Now func() time.Time
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func newQuery[T models.Payload](d Deps, name, emptyMessage string) *fetch.Query[T] {
	opts := fetch.Options{
		Timeout:      d.Timeout,
		EmptyMessage: emptyMessage,
		Notify:       d.Notify,
		Logger:       d.logger(),
	}
	if d.Tracker != nil {
		opts.Tracker = d.Tracker
	}
	return fetch.NewQuery[T](name, opts)
}
