package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

func TestWriteNotificationsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteNotificationsCSV(&buf, []models.NotificationItem{
		{
			Status:             models.AlertCritical,
			Product:            "Shirt, Blue",
			SKU:                "Shirt, Blue",
			CurrentStock:       12,
			DecreaseRate:       "35.5%/week",
			TimeToRunOut:       "5 days",
			MinStock:           20,
			Buffer:             4.5,
			RecommendedRestock: 40,
		},
	})
	require.NoError(t, err)

	want := "Status,Product,SKU,Current Stock,Decrease Rate,Time to Run Out,Min Stock,Buffer,Recommended Restock\n" +
		"critical,\"Shirt, Blue\",\"Shirt, Blue\",12,35.5%/week,5 days,20,4.5,40\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteNotificationsCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNotificationsCSV(&buf, nil))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}
