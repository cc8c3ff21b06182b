package views

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/apiclient"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/fetch"
	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// DefaultLowStockThreshold is the stock count below which a product is low
const DefaultLowStockThreshold = 50

// FileKind names one of the two training uploads
type FileKind string

const (
	FileSale    FileKind = "sale"
	FileProduct FileKind = "product"
)

// ErrUnknownFileKind is returned for a kind other than sale or product
var ErrUnknownFileKind = errors.New(`file kind must be "sale" or "product"`)

// ParseFileKind validates a file kind. "sales" and "products" are accepted.
func ParseFileKind(s string) (FileKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale", "sales":
		return FileSale, nil
	case "product", "products":
		return FileProduct, nil
	default:
		return "", ErrUnknownFileKind
	}
}

func (k FileKind) label() string {
	if k == FileSale {
		return "Sales"
	}
	return "Product"
}

func (k FileKind) other() FileKind {
	if k == FileSale {
		return FileProduct
	}
	return FileSale
}

// StagedFile describes an upload waiting for training
type StagedFile struct {
	Kind     FileKind `json:"kind"`
	Filename string   `json:"filename"`
	Size     int      `json:"size"`
}

// Stocks is the stock-level page with the training upload flow
type Stocks struct {
	deps      Deps
	threshold int
	levels    *fetch.Query[*models.StockLevelsResponse]
	train     *fetch.Query[*models.TrainResponse]

	mu            sync.Mutex
	staged        map[FileKind]*apiclient.Upload
	uploadMessage string
}

// StocksSnapshot is the JSON view of the stock page
type StocksSnapshot struct {
	Levels        fetch.Result[[]models.StockItem]    `json:"levels"`
	Staged        []StagedFile                        `json:"staged"`
	Training      fetch.Result[*models.TrainResponse] `json:"training"`
	UploadMessage string                              `json:"uploadMessage,omitempty"`
}

// NewStocks creates the stock page controller
func NewStocks(deps Deps, lowStockThreshold int) *Stocks {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Stocks{
		deps:      deps,
		threshold: lowStockThreshold,
		levels:    newQuery[*models.StockLevelsResponse](deps, "stocks.levels", "Please upload your product list and sales stock files to get started."),
		train:     newQuery[*models.TrainResponse](deps, "stocks.training", "Training finished but no rows were uploaded."),
		staged:    make(map[FileKind]*apiclient.Upload),
	}
}

// Load fetches stock levels
func (s *Stocks) Load(ctx context.Context) StocksSnapshot {
	s.levels.Run(ctx, s.deps.API.StockLevels)
	return s.Snapshot()
}

// StageFile keeps a file for the next training run, replacing any earlier
// file of the same kind
func (s *Stocks) StageFile(kind FileKind, filename string, content []byte) error {
	if kind != FileSale && kind != FileProduct {
		return ErrUnknownFileKind
	}
	if strings.TrimSpace(filename) == "" || len(content) == 0 {
		return inputRequired("file")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[kind] = &apiclient.Upload{Filename: filename, Content: content}
	s.uploadMessage = ""
	return nil
}

// Upload confirms the staged file of kind. Training starts once both files
// are staged; until then only a reminder is returned. After a successful
// training the staged files are cleared and stock levels reloaded.
func (s *Stocks) Upload(ctx context.Context, kind FileKind) (StocksSnapshot, error) {
	if kind != FileSale && kind != FileProduct {
		return s.Snapshot(), ErrUnknownFileKind
	}

	s.mu.Lock()
	current := s.staged[kind]
	if current == nil {
		s.mu.Unlock()
		return s.Snapshot(), inputRequired(string(kind) + " file")
	}
	if s.staged[kind.other()] == nil {
		s.uploadMessage = fmt.Sprintf("%s file uploaded successfully! Please upload the %s file to complete the training.",
			kind.label(), strings.ToLower(kind.other().label()))
		s.mu.Unlock()
		return s.Snapshot(), nil
	}
	sales, product := s.staged[FileSale], s.staged[FileProduct]
	s.mu.Unlock()

	result := s.train.Run(ctx, func(ctx context.Context) (*models.TrainResponse, error) {
		return s.deps.API.TrainModel(ctx, sales, product)
	})

	s.mu.Lock()
	switch result.Status {
	case fetch.StatusError:
		s.uploadMessage = "Upload failed: " + result.Message
		s.mu.Unlock()
		return s.Snapshot(), nil
	case fetch.StatusSuccess:
		s.uploadMessage = fmt.Sprintf("Training successful! %d rows uploaded.", result.Data.RowsUploaded)
	default:
		s.uploadMessage = result.Message
	}
	if s.staged[FileSale] == sales && s.staged[FileProduct] == product {
		s.staged = make(map[FileKind]*apiclient.Upload)
	}
	s.mu.Unlock()

	return s.Load(ctx), nil
}

// Snapshot returns the current state
func (s *Stocks) Snapshot() StocksSnapshot {
	s.mu.Lock()
	staged := make([]StagedFile, 0, len(s.staged))
	for kind, file := range s.staged {
		staged = append(staged, StagedFile{Kind: kind, Filename: file.Filename, Size: len(file.Content)})
	}
	message := s.uploadMessage
	s.mu.Unlock()
	sort.Slice(staged, func(i, j int) bool { return staged[i].Kind < staged[j].Kind })

	return StocksSnapshot{
		Levels:        fetch.Map(s.levels.Result(), s.items),
		Staged:        staged,
		Training:      s.train.Result(),
		UploadMessage: message,
	}
}

func (s *Stocks) items(resp *models.StockLevelsResponse) []models.StockItem {
	items := make([]models.StockItem, len(resp.Data))
	for i, level := range resp.Data {
		items[i] = ToStockItem(i, level, s.threshold)
	}
	return items
}

// ToStockItem shapes a stock row for display. The API's status wins when
// present; the colour always follows the count.
func ToStockItem(index int, level models.StockLevel, threshold int) models.StockItem {
	derived, color := models.StockIn, "green"
	switch {
	case level.Stock == 0:
		derived, color = models.StockOut, "red"
	case level.Stock.Int() < threshold:
		derived, color = models.StockLow, "orange"
	}

	status := level.Status
	if status == "" {
		status = derived
	}
	category := level.Category
	if category == "" {
		category = "Uncategorized"
	}

	return models.StockItem{
		ID:          index + 1,
		Product:     level.ProductName,
		SKU:         level.ProductSKU,
		Stock:       level.Stock.Int(),
		Category:    category,
		Status:      status,
		StatusColor: color,
	}
}

func (s *Stocks) reset() {
	s.levels.Reset()
	s.train.Reset()
}
