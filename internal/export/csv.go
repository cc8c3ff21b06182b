package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// NotificationsFilename is the suggested download name
const NotificationsFilename = "notifications.csv"

var notificationHeaders = []string{
	"Status",
	"Product",
	"SKU",
	"Current Stock",
	"Decrease Rate",
	"Time to Run Out",
	"Min Stock",
	"Buffer",
	"Recommended Restock",
}

// WriteNotificationsCSV emits the given alerts as CSV, one row per item
func WriteNotificationsCSV(w io.Writer, items []models.NotificationItem) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(notificationHeaders); err != nil {
		return err
	}
	for _, n := range items {
		if err := writer.Write([]string{
			n.Status,
			n.Product,
			n.SKU,
			formatFloat(n.CurrentStock),
			n.DecreaseRate,
			n.TimeToRunOut,
			formatFloat(n.MinStock),
			formatFloat(n.Buffer),
			formatFloat(n.RecommendedRestock),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
