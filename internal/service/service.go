// Package service holds the catalog use cases: bulk import, single product
// creation, reviews and shop reporting.
package service

import (
	"context"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/event"
)

// EventPublisher publishes catalog domain events. *event.Producer
// implements it. Publish failures are logged by the services and never
// fail the request.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductsImported(ctx context.Context, shopID, filename string, products []*domain.Product) error
	PublishProductDeleted(ctx context.Context, product *domain.Product, actorID string) error
	PublishProductReviewed(ctx context.Context, data event.ProductReviewedData) error
}

// Actor is the authenticated caller of an operation. Seller actors are
// identified by their shop id.
type Actor struct {
	ID   string
	Role string
}
