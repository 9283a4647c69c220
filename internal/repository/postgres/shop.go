package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/daffodeal/marketplace/pkg/database"
	apperrors "github.com/daffodeal/marketplace/pkg/errors"

	"github.com/daffodeal/marketplace/internal/domain"
)

// ShopRepository implements repository.ShopRepository on PostgreSQL.
type ShopRepository struct {
	db database.DBTX
}

// NewShopRepository creates a shop repository.
func NewShopRepository(db database.DBTX) *ShopRepository {
	return &ShopRepository{db: db}
}

// GetByID returns the shop with id.
func (r *ShopRepository) GetByID(ctx context.Context, id string) (s *domain.Shop, err error) {
	const query = `
		SELECT id, name, email, description, address, phone_number, zip_code, role, avatar, created_at
		FROM shops
		WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "shops.get", query)
	defer func() { end(ignoreNotFound(err)) }()

	var (
		shop   domain.Shop
		avatar []byte
	)
	err = r.db.QueryRow(ctx, query, id).Scan(
		&shop.ID, &shop.Name, &shop.Email, &shop.Description, &shop.Address,
		&shop.PhoneNumber, &shop.ZipCode, &shop.Role, &avatar, &shop.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("shop", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if err := unmarshalJSONB(avatar, &shop.Avatar); err != nil {
		return nil, fmt.Errorf("unmarshal shop avatar: %w", err)
	}
	return &shop, nil
}
