package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/daffodeal/marketplace/pkg/kafka"
	"github.com/daffodeal/marketplace/pkg/logger"

	"github.com/daffodeal/marketplace/internal/domain"
)

type published struct {
	topic string
	event *pkgkafka.Event
}

type recordingPublisher struct {
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, ev *pkgkafka.Event) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{topic: topic, event: ev})
	return nil
}

func newTestProducer(pub Publisher) *Producer {
	return NewProducer(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishProductCreated(t *testing.T) {
	pub := &recordingPublisher{}
	p := newTestProducer(pub)
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")

	product := &domain.Product{
		ID:            "p-1",
		ShopID:        "s-1",
		Name:          "Shirt",
		DiscountPrice: 500,
		Images:        []domain.Image{{PublicID: "a", URL: "u"}, {PublicID: "b", URL: "v"}},
	}
	require.NoError(t, p.PublishProductCreated(ctx, product))

	require.Len(t, pub.sent, 1)
	sent := pub.sent[0]
	assert.Equal(t, TopicProductCreated, sent.topic)
	assert.Equal(t, "p-1", sent.event.AggregateID)
	assert.Equal(t, AggregateTypeProduct, sent.event.AggregateType)
	assert.Equal(t, SourceCatalog, sent.event.Source)
	assert.Equal(t, "corr-1", sent.event.CorrelationID)

	var data ProductCreatedData
	require.NoError(t, sent.event.UnmarshalData(&data))
	assert.Equal(t, 2, data.ImageCount)
	assert.Equal(t, "u", data.ThumbnailURL)
	assert.Equal(t, int64(500), data.DiscountPrice)
}

func TestPublishProductCreated_NoImages(t *testing.T) {
	pub := &recordingPublisher{}
	require.NoError(t, newTestProducer(pub).PublishProductCreated(context.Background(), &domain.Product{ID: "p-1"}))

	var data ProductCreatedData
	require.NoError(t, pub.sent[0].event.UnmarshalData(&data))
	assert.Zero(t, data.ImageCount)
	assert.Empty(t, data.ThumbnailURL)
}

func TestPublishProductsImported_KeyedByShop(t *testing.T) {
	pub := &recordingPublisher{}
	p := newTestProducer(pub)

	products := []*domain.Product{{ID: "p-1"}, {ID: "p-2"}}
	require.NoError(t, p.PublishProductsImported(context.Background(), "s-1", "catalog.csv", products))

	require.Len(t, pub.sent, 1)
	assert.Equal(t, TopicProductImported, pub.sent[0].topic)
	assert.Equal(t, "s-1", pub.sent[0].event.AggregateID)
	assert.Empty(t, pub.sent[0].event.CorrelationID)

	var data ProductsImportedData
	require.NoError(t, pub.sent[0].event.UnmarshalData(&data))
	assert.Equal(t, 2, data.Count)
	assert.Equal(t, []string{"p-1", "p-2"}, data.ProductIDs)
}

func TestPublishProductDeletedAndReviewed(t *testing.T) {
	pub := &recordingPublisher{}
	p := newTestProducer(pub)

	deleted := &domain.Product{
		ID:     "p-1",
		ShopID: "s-1",
		Images: []domain.Image{{PublicID: "products/a", URL: "u"}, {PublicID: "products/b", URL: "v"}},
	}
	require.NoError(t, p.PublishProductDeleted(context.Background(), deleted, "u-9"))
	require.NoError(t, p.PublishProductReviewed(context.Background(), ProductReviewedData{ProductID: "p-1", Rating: 4}))

	require.Len(t, pub.sent, 2)
	assert.Equal(t, TopicProductDeleted, pub.sent[0].topic)
	assert.Equal(t, TopicProductReviewed, pub.sent[1].topic)

	var gone ProductDeletedData
	require.NoError(t, pub.sent[0].event.UnmarshalData(&gone))
	assert.Equal(t, "u-9", gone.ActorID)
	assert.Equal(t, []string{"products/a", "products/b"}, gone.ImageIDs)

	var reviewed ProductReviewedData
	require.NoError(t, pub.sent[1].event.UnmarshalData(&reviewed))
	assert.Equal(t, 4, reviewed.Rating)
}

func TestPublish_WrapsPublisherError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	p := newTestProducer(pub)

	err := p.PublishProductDeleted(context.Background(), &domain.Product{ID: "p-1"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish marketplace.product.deleted event")
	assert.Contains(t, err.Error(), "broker down")
}
