package repository

import (
	"context"
	"time"

	"github.com/daffodeal/marketplace/internal/domain"
)

// ProductRepository defines product persistence.
type ProductRepository interface {
	// Create inserts one product.
	Create(ctx context.Context, product *domain.Product) error

	// CreateMany inserts every product in one transaction. Either all rows
	// are stored or none are.
	CreateMany(ctx context.Context, products []*domain.Product) error

	// GetByID returns a product or an ErrNotFound error.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// ListByShop returns a shop's products, newest first.
	ListByShop(ctx context.Context, shopID string) ([]domain.Product, error)

	// List returns one page of all products, newest first, and the total.
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)

	// UpdateReviews writes only the review set and mean rating of a product.
	UpdateReviews(ctx context.Context, id string, reviews []domain.Review, ratings float64) error

	// Delete removes a product.
	Delete(ctx context.Context, id string) error
}

// ShopRepository defines read access to shops.
type ShopRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Shop, error)
}

// OrderRepository defines the order operations the catalog needs.
type OrderRepository interface {
	// MarkLineItemReviewed sets is_reviewed on the line item of orderID that
	// references productID. It reports whether such a line item exists.
	// Marking an already reviewed item again is a no-op that still reports
	// true.
	MarkLineItemReviewed(ctx context.Context, orderID, productID string) (bool, error)

	// ListByShopBetween returns orders containing a line item of shopID
	// created in [from, to), newest first.
	ListByShopBetween(ctx context.Context, shopID string, from, to time.Time) ([]domain.Order, error)

	// SalesByShopBetween returns the count and summed total price of the
	// orders ListByShopBetween would return.
	SalesByShopBetween(ctx context.Context, shopID string, from, to time.Time) (int, int64, error)
}
