package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"
	"github.com/daffodeal/marketplace/pkg/validator"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/ingest"
	"github.com/daffodeal/marketplace/internal/repository"
)

// ImportService runs the bulk ingestion pipeline: parse the file, turn each
// row into a product of the shop and store all of them in one batch.
type ImportService struct {
	products repository.ProductRepository
	shops    repository.ShopRepository
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewImportService creates an import service.
func NewImportService(
	products repository.ProductRepository,
	shops repository.ShopRepository,
	events EventPublisher,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		products: products,
		shops:    shops,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// ImportProducts imports every row of file into shopID. The file format is
// chosen from filename. Either every row is stored or none is: any row that
// cannot be cast or fails validation rejects the whole file with a 400
// listing each failing row.
func (s *ImportService) ImportProducts(ctx context.Context, shopID, filename string, file io.Reader) ([]*domain.Product, error) {
	products, err := s.Prepare(ctx, shopID, filename, file)
	if err != nil {
		return nil, err
	}

	if err := s.products.CreateMany(ctx, products); err != nil {
		s.logger.ErrorContext(ctx, "bulk product insert failed",
			slog.String("shop_id", shopID),
			slog.Int("rows", len(products)),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Upstream("failed to save imported products", err)
	}

	if err := s.events.PublishProductsImported(ctx, shopID, filename, products); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.imported event",
			slog.String("shop_id", shopID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "products imported",
		slog.String("shop_id", shopID),
		slog.String("filename", filename),
		slog.Int("count", len(products)),
	)
	return products, nil
}

// ImportFile imports the file at path. It backs the importer command.
func (s *ImportService) ImportFile(ctx context.Context, shopID, path string) ([]*domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return s.ImportProducts(ctx, shopID, filepath.Base(path), f)
}

// Prepare runs every step of ImportProducts except the insert and returns
// the products that would be stored.
func (s *ImportService) Prepare(ctx context.Context, shopID, filename string, file io.Reader) ([]*domain.Product, error) {
	shopID = strings.TrimSpace(shopID)
	if shopID == "" {
		return nil, apperrors.InvalidInput("shop id is required")
	}

	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if file == nil {
		return nil, apperrors.InvalidInput("file is required")
	}

	format, err := ingest.FormatFromFilename(filename)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	records, err := ingest.Parse(file, format)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("could not read import file: %v", err))
	}

	snapshot := shop.Snapshot()
	now := s.now().UTC()
	products := make([]*domain.Product, 0, len(records))
	var rowErrs []ingest.RowError
	for _, rec := range records {
		draft := ingest.Transform(rec)
		p, err := draft.Product(shop.ID, snapshot, now)
		if err != nil {
			var rowErr *ingest.RowError
			if !errors.As(err, &rowErr) {
				return nil, fmt.Errorf("transform row %d: %w", rec.Row, err)
			}
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		if errs := validateRow(rec.Row, p); len(errs) > 0 {
			rowErrs = append(rowErrs, errs...)
			continue
		}
		p.ID = uuid.New().String()
		products = append(products, p)
	}

	if len(rowErrs) > 0 {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("import rejected: %d row error(s), no products were saved", len(rowErrs)),
		).WithDetails(rowErrs)
	}
	return products, nil
}

func validateRow(row int, p *domain.Product) []ingest.RowError {
	err := validator.Validate(p)
	if err == nil {
		return nil
	}
	var valErr *validator.ValidationError
	if !errors.As(err, &valErr) {
		return []ingest.RowError{{Row: row, Message: err.Error()}}
	}
	fieldErrs := valErr.FieldErrors()
	out := make([]ingest.RowError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ingest.RowError{
			Row:     row,
			Column:  ingest.ColumnForField(fe.Field),
			Message: fe.Message,
		})
	}
	return out
}
