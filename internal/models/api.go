package models

import "github.com/shopspring/decimal"

// Payload is implemented by every response schema that carries the
// application-level success flag. Rows reports how many result rows the
// payload holds so callers can tell "success with data" from "success, empty".
type Payload interface {
	OK() bool
	ServerMessage() string
	Rows() int
}

// Envelope is the common {success, message} header of the API's responses
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (e Envelope) OK() bool              { return e.Success }
func (e Envelope) ServerMessage() string { return e.Message }

// DashboardStats are the four counters on the home page
type DashboardStats struct {
	TotalStockItems Count           `json:"total_stock_items"`
	LowStockAlerts  Count           `json:"low_stock_alerts"`
	SalesThisMonth  decimal.Decimal `json:"sales_this_month"`
	OutOfStock      Count           `json:"out_of_stock"`
}

// DashboardResponse is returned by GET /analysis/dashboard
type DashboardResponse struct {
	Envelope
	Data *DashboardStats `json:"data"`
}

func (r DashboardResponse) Rows() int {
	if r.Data == nil {
		return 0
	}
	return 1
}

// StockLevel is one product row of GET /stock/levels
type StockLevel struct {
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
	Stock       Count  `json:"stock"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}

// StockLevelsResponse is returned by GET /stock/levels
type StockLevelsResponse struct {
	Envelope
	Data      []StockLevel `json:"data"`
	Total     Count        `json:"total,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
}

func (r StockLevelsResponse) Rows() int { return len(r.Data) }

// Notification is one low-stock alert row. Field names follow the API's
// column headers.
type Notification struct {
	Product      string  `json:"Product"`
	Stock        float64 `json:"Stock"`
	LastStock    float64 `json:"Last_Stock"`
	DecreaseRate float64 `json:"Decrease_Rate(%)"`
	WeeksToEmpty float64 `json:"Weeks_To_Empty"`
	MinStock     float64 `json:"MinStock"`
	Buffer       float64 `json:"Buffer"`
	ReorderQty   float64 `json:"Reorder_Qty"`
	Status       string  `json:"Status"`
	Description  string  `json:"Description"`
}

func (n *Notification) OK() bool              { return n != nil }
func (n *Notification) ServerMessage() string { return "" }
func (n *Notification) Rows() int {
	if n == nil || n.Product == "" {
		return 0
	}
	return 1
}

// NotificationList is the bare array returned by GET /api/notifications.
// The endpoint has no success flag: an empty array is the "no data" case.
type NotificationList []Notification

func (l NotificationList) OK() bool              { return true }
func (l NotificationList) ServerMessage() string { return "" }
func (l NotificationList) Rows() int             { return len(l) }

// HealthStatus is the free-form body of GET /health
type HealthStatus map[string]any

// TrainResponse is returned by the multipart POST /train
type TrainResponse struct {
	RowsUploaded Count  `json:"rows_uploaded"`
	Status       string `json:"status,omitempty"`
	Message      string `json:"message,omitempty"`
}

func (r TrainResponse) OK() bool              { return true }
func (r TrainResponse) ServerMessage() string { return r.Message }
func (r TrainResponse) Rows() int             { return r.RowsUploaded.Int() }

// ForecastRow is one predicted point
type ForecastRow struct {
	ProductSKU     string  `json:"product_sku"`
	ForecastDate   string  `json:"forecast_date"`
	PredictedSales float64 `json:"predicted_sales"`
	CurrentSales   float64 `json:"current_sales"`
	CurrentDateCol string  `json:"current_date_col"`
}

// ForecastResponse is returned by POST /predict and GET /predict/existing
type ForecastResponse struct {
	Status       string        `json:"status"`
	ForecastRows Count         `json:"forecast_rows"`
	NForecast    Count         `json:"n_forecast,omitempty"`
	Forecast     []ForecastRow `json:"forecast"`
	Message      string        `json:"message,omitempty"`
}

// OK treats any status other than an explicit error as success; the
// forecast endpoints report "success" or "no_data" rather than a boolean.
func (r ForecastResponse) OK() bool              { return r.Status != "error" }
func (r ForecastResponse) ServerMessage() string { return r.Message }
func (r ForecastResponse) Rows() int             { return len(r.Forecast) }

// ClearResponse is returned by DELETE /predict/clear
type ClearResponse struct {
	Envelope
	DeletedRows Count `json:"deleted_rows,omitempty"`
}

// Rows is 1 on success so a cleared store is not mistaken for "no data"
func (r ClearResponse) Rows() int {
	if r.Success {
		return 1
	}
	return 0
}
