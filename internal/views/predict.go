package views

import (
	"context"
	"strconv"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// ForecastInput is the forecast horizon in periods
type ForecastInput struct {
	NForecast int `json:"n_forecast" validate:"min=1,max=24"`
}

// DefaultForecastHorizon is used when no horizon is given
const DefaultForecastHorizon = 3

// Predict runs and clears sales forecasts
type Predict struct {
	deps     Deps
	forecast *fetch.Query[*models.ForecastResponse]
	clear    *fetch.Query[*models.ClearResponse]
}

// PredictSnapshot is the JSON view of the forecast page
type PredictSnapshot struct {
	Forecast fetch.Result[*models.ForecastResponse] `json:"forecast"`
	Clear    fetch.Result[*models.ClearResponse]    `json:"clear"`
}

// NewPredict creates the forecast controller
func NewPredict(deps Deps) *Predict {
	return &Predict{
		deps:     deps,
		forecast: newQuery[*models.ForecastResponse](deps, "predict.forecast", "No forecasts yet"),
		clear:    newQuery[*models.ClearResponse](deps, "predict.clear", "Nothing to clear"),
	}
}

// Forecast predicts n periods ahead; zero uses DefaultForecastHorizon
func (p *Predict) Forecast(ctx context.Context, n int) (PredictSnapshot, error) {
	if n == 0 {
		n = DefaultForecastHorizon
	}
	if err := validateInput(ForecastInput{NForecast: n}); err != nil {
		return p.Snapshot(), err
	}

	p.forecast.RunKeyed(ctx, strconv.Itoa(n), func(ctx context.Context) (*models.ForecastResponse, error) {
		return p.deps.API.Forecast(ctx, n)
	})
	return p.Snapshot(), nil
}

// LoadExisting fetches the forecasts already stored by the API
func (p *Predict) LoadExisting(ctx context.Context) PredictSnapshot {
	p.forecast.RunKeyed(ctx, "existing", p.deps.API.ExistingForecasts)
	return p.Snapshot()
}

// Clear deletes stored forecasts and reloads the (now empty) list
func (p *Predict) Clear(ctx context.Context) PredictSnapshot {
	result := p.clear.Run(ctx, p.deps.API.ClearForecasts)
	if result.Status == fetch.StatusSuccess {
		return p.LoadExisting(ctx)
	}
	return p.Snapshot()
}

// Snapshot returns the current state
func (p *Predict) Snapshot() PredictSnapshot {
	return PredictSnapshot{
		Forecast: p.forecast.Result(),
		Clear:    p.clear.Result(),
	}
}

func (p *Predict) reset() {
	p.forecast.Reset()
	p.clear.Reset()
}
