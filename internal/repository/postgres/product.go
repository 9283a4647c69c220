package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/daffodeal/marketplace/pkg/database"
	apperrors "github.com/daffodeal/marketplace/pkg/errors"
	"github.com/daffodeal/marketplace/pkg/pagination"

	"github.com/daffodeal/marketplace/internal/domain"
)

const productColumns = `id, shop_id, shop, name, description, product_detail, category, color, size,
	tags, original_price, discount_price, stock, images, reviews, ratings, sold_out, created_at, updated_at`

const insertProductSQL = `
	INSERT INTO products (` + productColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

// ProductRepository implements repository.ProductRepository on PostgreSQL.
// Images, reviews and the shop snapshot are stored as JSONB.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "products.create", insertProductSQL)
	defer func() { end(err) }()

	args, err := productArgs(p)
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, insertProductSQL, args...); err != nil {
		return mapWriteError(err, "insert product")
	}
	return nil
}

// CreateMany inserts all products in a single transaction.
func (r *ProductRepository) CreateMany(ctx context.Context, products []*domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "products.create_many", insertProductSQL)
	defer func() { end(err) }()

	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		for i, p := range products {
			args, err := productArgs(p)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, insertProductSQL, args...); err != nil {
				return mapWriteError(err, fmt.Sprintf("insert product %d of %d", i+1, len(products)))
			}
		}
		return nil
	})
}

// GetByID returns the product with id.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (p *domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "products.get", query)
	defer func() { end(ignoreNotFound(err)) }()

	p, err = scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListByShop returns every product of shopID, newest first.
func (r *ProductRepository) ListByShop(ctx context.Context, shopID string) (products []domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE shop_id = $1 ORDER BY created_at DESC`
	ctx, end := database.TraceQuery(ctx, "products.list_by_shop", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("list shop products: %w", err)
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// List returns one page of products, newest first, with the total count.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) (products []domain.Product, total int, err error) {
	query := `SELECT ` + productColumns + `, count(*) OVER() AS total_count
		FROM products
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`
	ctx, end := database.TraceQuery(ctx, "products.list", query)
	defer func() { end(err) }()

	page := pagination.New(filter.Page, filter.PerPage)
	rows, err := r.db.Query(ctx, query, page.PerPage, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		var (
			p   domain.Product
			raw productJSON
		)
		dest := append(productDest(&p, &raw), &total)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		if err := raw.decode(&p); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, total, nil
}

// UpdateReviews replaces the review set and mean rating of product id. No
// other column is written.
func (r *ProductRepository) UpdateReviews(ctx context.Context, id string, reviews []domain.Review, ratings float64) (err error) {
	const query = `UPDATE products SET reviews = $1, ratings = $2, updated_at = $3 WHERE id = $4`
	ctx, end := database.TraceQuery(ctx, "products.update_reviews", query)
	defer func() { end(ignoreNotFound(err)) }()

	if reviews == nil {
		reviews = []domain.Review{}
	}
	reviewsJSON, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("marshal reviews: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, reviewsJSON, ratings, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update product reviews: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// Delete removes product id.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM products WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "products.delete", query)
	defer func() { end(ignoreNotFound(err)) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// productJSON holds the raw JSONB columns of a product row.
type productJSON struct {
	shop, images, reviews []byte
}

func (raw productJSON) decode(p *domain.Product) error {
	if err := unmarshalJSONB(raw.shop, &p.Shop); err != nil {
		return fmt.Errorf("unmarshal shop snapshot: %w", err)
	}
	if err := unmarshalJSONB(raw.images, &p.Images); err != nil {
		return fmt.Errorf("unmarshal images: %w", err)
	}
	if err := unmarshalJSONB(raw.reviews, &p.Reviews); err != nil {
		return fmt.Errorf("unmarshal reviews: %w", err)
	}
	if p.Images == nil {
		p.Images = []domain.Image{}
	}
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return nil
}

func productDest(p *domain.Product, raw *productJSON) []any {
	return []any{
		&p.ID, &p.ShopID, &raw.shop, &p.Name, &p.Description, &p.ProductDetail,
		&p.Category, &p.Color, &p.Size, &p.Tags, &p.OriginalPrice, &p.DiscountPrice,
		&p.Stock, &raw.images, &raw.reviews, &p.Ratings, &p.SoldOut, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p   domain.Product
		raw productJSON
	)
	if err := row.Scan(productDest(&p, &raw)...); err != nil {
		return nil, err
	}
	if err := raw.decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func productArgs(p *domain.Product) ([]any, error) {
	shopJSON, err := json.Marshal(p.Shop)
	if err != nil {
		return nil, fmt.Errorf("marshal shop snapshot: %w", err)
	}
	images := p.Images
	if images == nil {
		images = []domain.Image{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}
	reviews := p.Reviews
	if reviews == nil {
		reviews = []domain.Review{}
	}
	reviewsJSON, err := json.Marshal(reviews)
	if err != nil {
		return nil, fmt.Errorf("marshal reviews: %w", err)
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return []any{
		p.ID, p.ShopID, shopJSON, p.Name, p.Description, p.ProductDetail,
		p.Category, p.Color, p.Size, tags, p.OriginalPrice, p.DiscountPrice,
		p.Stock, imagesJSON, reviewsJSON, p.Ratings, p.SoldOut, p.CreatedAt, p.UpdatedAt,
	}, nil
}
