package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/repository"
)

// ShopService serves shop profiles and sales reports.
type ShopService struct {
	shops  repository.ShopRepository
	orders repository.OrderRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewShopService creates a shop service.
func NewShopService(shops repository.ShopRepository, orders repository.OrderRepository, logger *slog.Logger) *ShopService {
	return &ShopService{shops: shops, orders: orders, logger: logger, now: time.Now}
}

// GetShop returns shop id.
func (s *ShopService) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	shop, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return shop, nil
}

// MonthlyReport summarises the orders of shopID placed in the current
// calendar month (UTC). The shop, the orders and the sales totals are
// loaded concurrently.
func (s *ShopService) MonthlyReport(ctx context.Context, shopID string) (*domain.MonthlyReport, error) {
	from, to := domain.MonthBounds(s.now().UTC())
	report := &domain.MonthlyReport{ShopID: shopID, From: from, To: to}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		shop, err := s.shops.GetByID(gctx, shopID)
		if err != nil {
			return fmt.Errorf("get shop: %w", err)
		}
		report.Shop = shop
		return nil
	})
	g.Go(func() error {
		orders, err := s.orders.ListByShopBetween(gctx, shopID, from, to)
		if err != nil {
			return fmt.Errorf("list shop orders: %w", err)
		}
		report.Orders = orders
		return nil
	})
	g.Go(func() error {
		count, total, err := s.orders.SalesByShopBetween(gctx, shopID, from, to)
		if err != nil {
			return fmt.Errorf("sum shop sales: %w", err)
		}
		report.TotalOrderCount = count
		report.TotalSales = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "monthly report built",
		slog.String("shop_id", shopID),
		slog.Int("orders", report.TotalOrderCount),
	)
	return report, nil
}
