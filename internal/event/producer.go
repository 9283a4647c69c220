package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/daffodeal/marketplace/pkg/kafka"
	"github.com/daffodeal/marketplace/pkg/logger"

	"github.com/daffodeal/marketplace/internal/domain"
)

// Kafka topics for catalog events.
const (
	TopicProductCreated  = "marketplace.product.created"
	TopicProductImported = "marketplace.product.imported"
	TopicProductDeleted  = "marketplace.product.deleted"
	TopicProductReviewed = "marketplace.product.reviewed"
)

const (
	AggregateTypeProduct = "product"
	AggregateTypeShop    = "shop"
	SourceCatalog        = "catalog-service"
)

// ProductCreatedData is the payload of product.created.
type ProductCreatedData struct {
	ID            string   `json:"id"`
	ShopID        string   `json:"shop_id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags,omitempty"`
	OriginalPrice int64    `json:"original_price"`
	DiscountPrice int64    `json:"discount_price"`
	Stock         int      `json:"stock"`
	ImageCount    int      `json:"image_count"`
	ThumbnailURL  string   `json:"thumbnail_url,omitempty"`
}

// ProductsImportedData is the payload of product.imported. One event is
// published per accepted file.
type ProductsImportedData struct {
	ShopID     string   `json:"shop_id"`
	Filename   string   `json:"filename,omitempty"`
	Count      int      `json:"count"`
	ProductIDs []string `json:"product_ids"`
}

// ProductDeletedData is the payload of product.deleted.
type ProductDeletedData struct {
	ID       string   `json:"id"`
	ShopID   string   `json:"shop_id"`
	ActorID  string   `json:"actor_id,omitempty"`
	ImageIDs []string `json:"image_ids"`
}

// ProductReviewedData is the payload of product.reviewed.
type ProductReviewedData struct {
	ProductID       string  `json:"product_id"`
	OrderID         string  `json:"order_id"`
	UserID          string  `json:"user_id"`
	Rating          int     `json:"rating"`
	Ratings         float64 `json:"ratings"`
	ReviewCount     int     `json:"review_count"`
	OrderLineMarked bool    `json:"order_line_marked"`
}

// Publisher hands an event envelope to a topic. *pkgkafka.Producer
// implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a catalog event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishProductCreated publishes product.created.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	data := ProductCreatedData{
		ID:            product.ID,
		ShopID:        product.ShopID,
		Name:          product.Name,
		Category:      product.Category,
		Tags:          product.Tags,
		OriginalPrice: product.OriginalPrice,
		DiscountPrice: product.DiscountPrice,
		Stock:         product.Stock,
		ImageCount:    len(product.Images),
	}
	if img, ok := product.PrimaryImage(); ok {
		data.ThumbnailURL = img.URL
	}
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, data)
}

// PublishProductsImported publishes product.imported for a whole batch,
// keyed by shop so a shop's imports stay ordered.
func (p *Producer) PublishProductsImported(ctx context.Context, shopID, filename string, products []*domain.Product) error {
	ids := make([]string, 0, len(products))
	for _, prod := range products {
		ids = append(ids, prod.ID)
	}
	data := ProductsImportedData{
		ShopID:     shopID,
		Filename:   filename,
		Count:      len(products),
		ProductIDs: ids,
	}
	return p.publish(ctx, TopicProductImported, shopID, AggregateTypeShop, data)
}

// PublishProductDeleted publishes product.deleted. The payload lists the
// product's image ids so media can be reclaimed when the catalog keeps them.
func (p *Producer) PublishProductDeleted(ctx context.Context, product *domain.Product, actorID string) error {
	data := ProductDeletedData{
		ID:       product.ID,
		ShopID:   product.ShopID,
		ActorID:  actorID,
		ImageIDs: product.ImagePublicIDs(),
	}
	return p.publish(ctx, TopicProductDeleted, product.ID, AggregateTypeProduct, data)
}

// PublishProductReviewed publishes product.reviewed.
func (p *Producer) PublishProductReviewed(ctx context.Context, data ProductReviewedData) error {
	return p.publish(ctx, TopicProductReviewed, data.ProductID, AggregateTypeProduct, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	ev, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceCatalog, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}
	if err := p.publisher.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
		slog.String("event_id", ev.EventID),
	)
	return nil
}
