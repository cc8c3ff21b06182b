package models

// Alert levels of a notification
const (
	AlertCritical = "critical"
	AlertWarning  = "warning"
	AlertSafe     = "safe"
)

// NotificationItem is a low-stock alert shaped for display
type NotificationItem struct {
	ID                 string  `json:"id"`
	Status             string  `json:"status"`
	Title              string  `json:"title"`
	Product            string  `json:"product"`
	SKU                string  `json:"sku"`
	EstimatedTime      string  `json:"estimatedTime"`
	RecommendUnits     float64 `json:"recommendUnits"`
	CurrentStock       float64 `json:"currentStock"`
	DecreaseRate       string  `json:"decreaseRate"`
	TimeToRunOut       string  `json:"timeToRunOut"`
	MinStock           float64 `json:"minStock"`
	Buffer             float64 `json:"buffer"`
	RecommendedRestock float64 `json:"recommendedRestock"`
	Description        string  `json:"description,omitempty"`
}

// Stock statuses derived when the API omits one
const (
	StockOut = "Out of Stock"
	StockLow = "Low Stock"
	StockIn  = "In Stock"
)

// StockItem is a stock-level row shaped for display
type StockItem struct {
	ID          int    `json:"id"`
	Product     string `json:"product"`
	SKU         string `json:"sku"`
	Stock       int    `json:"stock"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	StatusColor string `json:"statusColor"`
}
