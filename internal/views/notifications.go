package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/export"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// ErrUnknownAlertStatus is returned for a filter other than critical, warning or safe
var ErrUnknownAlertStatus = errors.New("unknown notification status")

// Description markers written by the forecasting service
const (
	markerOutOfStock = "หมดสต๊อก"
	markerDecreasing = "ลดลงเร็ว"
)

// Notifications is the low-stock alert page
type Notifications struct {
	deps   Deps
	list   *fetch.Query[models.NotificationList]
	detail *fetch.Query[*models.Notification]

	mu       sync.Mutex
	statuses []string
}

// NotificationsSnapshot is the JSON view of the alert page. Items holds
// the filtered list.
type NotificationsSnapshot struct {
	Items    fetch.Result[[]models.NotificationItem] `json:"items"`
	Filter   []string                                `json:"filter"`
	Selected fetch.Result[*models.NotificationItem]  `json:"selected"`
}

// NewNotifications creates the alert page controller
func NewNotifications(deps Deps) *Notifications {
	return &Notifications{
		deps:     deps,
		list:     newQuery[models.NotificationList](deps, "notifications.list", "No notifications"),
		detail:   newQuery[*models.Notification](deps, "notifications.detail", "Notification not found"),
		statuses: []string{},
	}
}

// Load fetches every alert
func (n *Notifications) Load(ctx context.Context) NotificationsSnapshot {
	n.list.Run(ctx, n.deps.API.Notifications)
	return n.Snapshot()
}

// Select fetches the detail of one product's alert
func (n *Notifications) Select(ctx context.Context, product string) (NotificationsSnapshot, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return n.Snapshot(), inputRequired("product")
	}

	n.detail.RunKeyed(ctx, product, func(ctx context.Context) (*models.Notification, error) {
		return n.deps.API.NotificationDetail(ctx, product)
	})
	return n.Snapshot(), nil
}

// ToggleStatus adds the status to the filter, or removes it if present
func (n *Notifications) ToggleStatus(status string) error {
	status, err := parseAlertStatus(status)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if i := slices.Index(n.statuses, status); i >= 0 {
		n.statuses = slices.Delete(n.statuses, i, i+1)
		return nil
	}
	n.statuses = append(n.statuses, status)
	return nil
}

// SetFilter replaces the filter. An empty list shows every alert.
func (n *Notifications) SetFilter(statuses []string) error {
	next := make([]string, 0, len(statuses))
	for _, s := range statuses {
		status, err := parseAlertStatus(s)
		if err != nil {
			return err
		}
		if !slices.Contains(next, status) {
			next = append(next, status)
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = next
	return nil
}

// ClearFilter shows every alert again
func (n *Notifications) ClearFilter() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = []string{}
}

// Filtered returns the alerts matching the filter; nil unless loaded
func (n *Notifications) Filtered() []models.NotificationItem {
	return n.Snapshot().Items.Data
}

// ExportCSV writes the filtered alerts as CSV
func (n *Notifications) ExportCSV(w io.Writer) error {
	return export.WriteNotificationsCSV(w, n.Filtered())
}

// Snapshot returns the current state
func (n *Notifications) Snapshot() NotificationsSnapshot {
	n.mu.Lock()
	filter := slices.Clone(n.statuses)
	n.mu.Unlock()

	items := fetch.Map(n.list.Result(), func(list models.NotificationList) []models.NotificationItem {
		out := make([]models.NotificationItem, 0, len(list))
		for i, raw := range list {
			item := ToNotificationItem(i, raw)
			if len(filter) == 0 || slices.Contains(filter, item.Status) {
				out = append(out, item)
			}
		}
		return out
	})

	selected := fetch.Map(n.detail.Result(), func(raw *models.Notification) *models.NotificationItem {
		item := ToNotificationItem(0, *raw)
		return &item
	})

	return NotificationsSnapshot{Items: items, Filter: filter, Selected: selected}
}

// ToNotificationItem shapes an API alert for display
func ToNotificationItem(index int, n models.Notification) models.NotificationItem {
	status := models.AlertSafe
	switch n.Status {
	case "Red":
		status = models.AlertCritical
	case "Yellow":
		status = models.AlertWarning
	}

	title := "Stock is Enough"
	switch {
	case strings.Contains(n.Description, markerOutOfStock):
		title = "Nearly Out of Stock!"
	case strings.Contains(n.Description, markerDecreasing):
		title = "Decreasing Rapidly"
	}

	return models.NotificationItem{
		ID:                 strconv.Itoa(index + 1),
		Status:             status,
		Title:              title,
		Product:            n.Product,
		SKU:                n.Product,
		EstimatedTime:      formatNumber(n.WeeksToEmpty) + " weeks",
		RecommendUnits:     n.ReorderQty,
		CurrentStock:       n.Stock,
		DecreaseRate:       formatNumber(n.DecreaseRate) + "%/week",
		TimeToRunOut:       fmt.Sprintf("%.0f days", math.Floor(n.WeeksToEmpty*7+0.5)),
		MinStock:           n.MinStock,
		Buffer:             n.Buffer,
		RecommendedRestock: n.ReorderQty,
		Description:        n.Description,
	}
}

func parseAlertStatus(s string) (string, error) {
	switch status := strings.ToLower(strings.TrimSpace(s)); status {
	case models.AlertCritical, models.AlertWarning, models.AlertSafe:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlertStatus, s)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (n *Notifications) reset() {
	n.list.Reset()
	n.detail.Reset()
}
