package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// ErrNoSalesFile is returned by TrainModel when the required sales file is missing
var ErrNoSalesFile = errors.New("sales file is required")

// Upload is a file to send as one multipart part
type Upload struct {
	Filename string
	Content  []byte
}

// TrainModel uploads the sales file and the optional product file and
// retrains the forecasting model. The multipart body does not go through
// doJSON but errors are classified the same way.
func (c *Client) TrainModel(ctx context.Context, sales *Upload, product *Upload) (*models.TrainResponse, error) {
	if sales == nil {
		return nil, ErrNoSalesFile
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writePart(writer, "sales_file", sales); err != nil {
		return nil, err
	}
	if product != nil {
		if err := writePart(writer, "product_file", product); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	raw, err := c.do(ctx, request{
		method:      http.MethodPost,
		endpoint:    "/train",
		path:        "/train",
		body:        &buf,
		contentType: writer.FormDataContentType(),
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Detail == "" {
			apiErr.Detail = "Training failed"
		}
		return nil, err
	}

	var resp models.TrainResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &DecodeError{Endpoint: "/train", Err: err}
	}
	return &resp, nil
}

func writePart(writer *multipart.Writer, field string, upload *Upload) error {
	part, err := writer.CreateFormFile(field, upload.Filename)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := part.Write(upload.Content); err != nil {
		return fmt.Errorf("failed to write %s part: %w", field, err)
	}
	return nil
}
