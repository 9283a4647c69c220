package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/event"
	"github.com/daffodeal/marketplace/internal/storage"
)

// --- Mock Repositories ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepository) CreateMany(ctx context.Context, products []*domain.Product) error {
	return m.Called(ctx, products).Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) ListByShop(ctx context.Context, shopID string) ([]domain.Product, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) UpdateReviews(ctx context.Context, id string, reviews []domain.Review, ratings float64) error {
	return m.Called(ctx, id, reviews, ratings).Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockShopRepository struct {
	mock.Mock
}

func (m *mockShopRepository) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shop), args.Error(1)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) MarkLineItemReviewed(ctx context.Context, orderID, productID string) (bool, error) {
	args := m.Called(ctx, orderID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepository) ListByShopBetween(ctx context.Context, shopID string, from, to time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, shopID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) SalesByShopBetween(ctx context.Context, shopID string, from, to time.Time) (int, int64, error) {
	args := m.Called(ctx, shopID, from, to)
	return args.Int(0), args.Get(1).(int64), args.Error(2)
}

// --- Mock Collaborators ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockPublisher) PublishProductsImported(ctx context.Context, shopID, filename string, products []*domain.Product) error {
	return m.Called(ctx, shopID, filename, products).Error(0)
}

func (m *mockPublisher) PublishProductDeleted(ctx context.Context, product *domain.Product, actorID string) error {
	return m.Called(ctx, product, actorID).Error(0)
}

func (m *mockPublisher) PublishProductReviewed(ctx context.Context, data event.ProductReviewedData) error {
	return m.Called(ctx, data).Error(0)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, raw string) (*storage.UploadResult, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *mockUploader) Destroy(ctx context.Context, publicID string) error {
	return m.Called(ctx, publicID).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func sampleShop() *domain.Shop {
	return &domain.Shop{
		ID:      "5a71c0de-0000-4000-8000-000000000002",
		Name:    "Daffo Store",
		Email:   "shop@daffodeal.io",
		Address: "MG Road",
		Role:    "Seller",
		Avatar:  domain.Avatar{PublicID: "avatars/1", URL: "http://cdn/av.png"},
	}
}
