package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"
	"github.com/daffodeal/marketplace/pkg/middleware"
	"github.com/daffodeal/marketplace/pkg/pagination"
	"github.com/daffodeal/marketplace/pkg/validator"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/repository"
	"github.com/daffodeal/marketplace/internal/storage"
)

// placeholderPrefix marks image ids of imported rows that were never
// uploaded.
const placeholderPrefix = "image-"

// ProductService implements single product creation, catalog reads and
// deletion.
type ProductService struct {
	products    repository.ProductRepository
	shops       repository.ShopRepository
	uploader    storage.Uploader
	events      EventPublisher
	logger      *slog.Logger
	purgeImages bool
	now         func() time.Time
}

// ProductServiceOption configures a ProductService.
type ProductServiceOption func(*ProductService)

// WithImagePurge makes DeleteProduct destroy the uploaded images of the
// deleted product.
func WithImagePurge(enabled bool) ProductServiceOption {
	return func(s *ProductService) { s.purgeImages = enabled }
}

// NewProductService creates a product service.
func NewProductService(
	products repository.ProductRepository,
	shops repository.ShopRepository,
	uploader storage.Uploader,
	events EventPublisher,
	logger *slog.Logger,
	opts ...ProductServiceOption,
) *ProductService {
	s := &ProductService{
		products: products,
		shops:    shops,
		uploader: uploader,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProductInput holds the fields of a new product. Images are raw
// image values handed to the uploader, in display order. Prices are minor
// units.
type CreateProductInput struct {
	ShopID        string   `json:"shopId" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	ProductDetail string   `json:"productDetail"`
	Category      string   `json:"category" validate:"required"`
	Color         string   `json:"color"`
	Size          string   `json:"size"`
	Tags          []string `json:"tags"`
	OriginalPrice int64    `json:"originalPrice" validate:"gte=0"`
	DiscountPrice int64    `json:"discountPrice" validate:"gt=0"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Images        []string `json:"images" validate:"min=1,dive,required"`
}

// CreateProduct resolves the shop, uploads every image in order and stores
// the product. The first failed upload aborts the operation and nothing is
// stored.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.ShopID) == "" {
		return nil, apperrors.InvalidInput("shop id is required")
	}
	shop, err := s.shops.GetByID(ctx, input.ShopID)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	images, err := s.uploadAll(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	product := &domain.Product{
		ID:            uuid.New().String(),
		ShopID:        shop.ID,
		Shop:          shop.Snapshot(),
		Name:          input.Name,
		Description:   input.Description,
		ProductDetail: input.ProductDetail,
		Category:      input.Category,
		Color:         input.Color,
		Size:          input.Size,
		Tags:          tags,
		OriginalPrice: input.OriginalPrice,
		DiscountPrice: input.DiscountPrice,
		Stock:         input.Stock,
		Images:        images,
		Reviews:       []domain.Review{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validator.Validate(product); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.events.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("shop_id", product.ShopID),
		slog.Int("images", len(product.Images)),
	)
	return product, nil
}

// uploadAll uploads raw images one at a time, preserving order. On failure
// the images uploaded so far are destroyed.
func (s *ProductService) uploadAll(ctx context.Context, raw []string) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(raw))
	for i, r := range raw {
		res, err := s.uploader.Upload(ctx, r)
		if err != nil {
			s.discard(ctx, images)
			return nil, fmt.Errorf("upload image %d of %d: %w", i+1, len(raw), err)
		}
		images = append(images, domain.Image{PublicID: res.PublicID, URL: res.URL})
	}
	return images, nil
}

func (s *ProductService) discard(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if err := s.uploader.Destroy(ctx, img.PublicID); err != nil {
			s.logger.WarnContext(ctx, "failed to destroy orphaned image",
				slog.String("public_id", img.PublicID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// ListShopProducts returns every product of shopID, newest first.
func (s *ProductService) ListShopProducts(ctx context.Context, shopID string) ([]domain.Product, error) {
	products, err := s.products.ListByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("list shop products: %w", err)
	}
	return products, nil
}

// ListProducts returns one page of the catalog, newest first.
func (s *ProductService) ListProducts(ctx context.Context, params pagination.Params) (pagination.Result[domain.Product], error) {
	products, total, err := s.products.List(ctx, domain.ProductFilter{Page: params.Page, PerPage: params.PerPage})
	if err != nil {
		return pagination.Result[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.NewResult(products, total, params), nil
}

// ListAllForAdmin is the admin view of the catalog. Role checks happen in
// the router.
func (s *ProductService) ListAllForAdmin(ctx context.Context, params pagination.Params) (pagination.Result[domain.Product], error) {
	return s.ListProducts(ctx, params)
}

// GetProduct returns product id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes product id. Sellers may delete only products of
// their own shop; admins may delete any product. Orders referencing the
// product are left untouched.
func (s *ProductService) DeleteProduct(ctx context.Context, id string, actor Actor) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	switch actor.Role {
	case middleware.RoleAdmin:
	case middleware.RoleSeller:
		if product.ShopID != actor.ID {
			return apperrors.Forbidden("product belongs to another shop")
		}
	default:
		return apperrors.Forbidden(fmt.Sprintf("%s can not delete products", actor.Role))
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if s.purgeImages {
		s.discard(ctx, uploadedImages(product.Images))
	}

	if err := s.events.PublishProductDeleted(ctx, product, actor.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
		slog.String("shop_id", product.ShopID),
		slog.String("actor_id", actor.ID),
		slog.Bool("images_purged", s.purgeImages),
	)
	return nil
}

func uploadedImages(images []domain.Image) []domain.Image {
	out := make([]domain.Image, 0, len(images))
	for _, img := range images {
		if img.PublicID == "" || strings.HasPrefix(img.PublicID, placeholderPrefix) {
			continue
		}
		out = append(out, img)
	}
	return out
}
