package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/event"
	"github.com/daffodeal/marketplace/internal/repository"
)

// ReviewService merges reviews into products and flags the reviewed order
// line item.
type ReviewService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewReviewService creates a review service.
func NewReviewService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	events EventPublisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		products: products,
		orders:   orders,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// ReviewInput is one review submission. User.ID must be the authenticated
// caller.
type ReviewInput struct {
	User      domain.ReviewUser
	Rating    int
	Comment   string
	ProductID string
	OrderID   string
}

// ReviewResult reports what a submission changed.
type ReviewResult struct {
	ProductID       string  `json:"productId"`
	Ratings         float64 `json:"ratings"`
	ReviewCount     int     `json:"reviewCount"`
	Replaced        bool    `json:"replaced"`
	OrderLineMarked bool    `json:"orderLineMarked"`
}

// SubmitReview upserts the caller's review on the product, recomputes the
// mean rating and writes only the review columns. It then marks the order
// line item for the product as reviewed.
//
// The two writes are not transactional. Both are safe to repeat, so a
// client may resubmit after a failure of the second write. An order with no
// line item for the product is tolerated: it is logged and reported through
// OrderLineMarked.
func (s *ReviewService) SubmitReview(ctx context.Context, in ReviewInput) (*ReviewResult, error) {
	if !domain.ValidRating(in.Rating) {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating),
		)
	}
	if strings.TrimSpace(in.User.ID) == "" {
		return nil, apperrors.Unauthorized("Please login to continue")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	replaced := product.UpsertReview(domain.Review{
		User:      in.User,
		Rating:    in.Rating,
		Comment:   in.Comment,
		ProductID: in.ProductID,
		CreatedAt: s.now().UTC(),
	})
	ratings := product.RecomputeRatings()

	if err := s.products.UpdateReviews(ctx, product.ID, product.Reviews, ratings); err != nil {
		return nil, fmt.Errorf("save product reviews: %w", err)
	}

	marked, err := s.orders.MarkLineItemReviewed(ctx, in.OrderID, in.ProductID)
	if err != nil {
		s.logger.ErrorContext(ctx, "review saved but order line item not updated",
			slog.String("product_id", in.ProductID),
			slog.String("order_id", in.OrderID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("mark order line item reviewed: %w", err)
	}
	if !marked {
		s.logger.WarnContext(ctx, "order has no line item for reviewed product",
			slog.String("product_id", in.ProductID),
			slog.String("order_id", in.OrderID),
			slog.String("user_id", in.User.ID),
		)
	}

	result := &ReviewResult{
		ProductID:       product.ID,
		Ratings:         ratings,
		ReviewCount:     len(product.Reviews),
		Replaced:        replaced,
		OrderLineMarked: marked,
	}

	if err := s.events.PublishProductReviewed(ctx, event.ProductReviewedData{
		ProductID:       product.ID,
		OrderID:         in.OrderID,
		UserID:          in.User.ID,
		Rating:          in.Rating,
		Ratings:         ratings,
		ReviewCount:     result.ReviewCount,
		OrderLineMarked: marked,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.reviewed event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("product_id", product.ID),
		slog.String("user_id", in.User.ID),
		slog.Int("rating", in.Rating),
		slog.Bool("replaced", replaced),
	)
	return result, nil
}
