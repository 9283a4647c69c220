package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"
	"github.com/daffodeal/marketplace/pkg/health"
	"github.com/daffodeal/marketplace/pkg/httputil"
	"github.com/daffodeal/marketplace/pkg/middleware"

	"github.com/daffodeal/marketplace/internal/auth"
	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/event"
	"github.com/daffodeal/marketplace/internal/service"
	"github.com/daffodeal/marketplace/internal/storage/memory"
)

// =============================================================================
// In-memory repositories
// =============================================================================

type store struct {
	mu          sync.Mutex
	products    map[string]domain.Product
	shops       map[string]*domain.Shop
	orders      map[string]*domain.Order
	failInserts bool
}

func newStore() *store {
	return &store{
		products: map[string]domain.Product{},
		shops:    map[string]*domain.Shop{},
		orders:   map[string]*domain.Order{},
	}
}

type productRepo struct{ s *store }

func (r productRepo) Create(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = *p
	return nil
}

func (r productRepo) CreateMany(_ context.Context, ps []*domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failInserts {
		return apperrors.Internal(io.ErrUnexpectedEOF)
	}
	for _, p := range ps {
		r.s.products[p.ID] = *p
	}
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	p.Reviews = append([]domain.Review(nil), p.Reviews...)
	return &p, nil
}

func (r productRepo) sorted() []domain.Product {
	out := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r productRepo) ListByShop(_ context.Context, shopID string) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Product{}
	for _, p := range r.sorted() {
		if p.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r productRepo) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted()
	start := min((f.Page-1)*f.PerPage, len(all))
	end := min(start+f.PerPage, len(all))
	return all[start:end], len(all), nil
}

func (r productRepo) UpdateReviews(_ context.Context, id string, reviews []domain.Review, ratings float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return apperrors.NotFound("product", id)
	}
	p.Reviews, p.Ratings = reviews, ratings
	r.s.products[id] = p
	return nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return apperrors.NotFound("product", id)
	}
	delete(r.s.products, id)
	return nil
}

type shopRepo struct{ s *store }

func (r shopRepo) GetByID(_ context.Context, id string) (*domain.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shop, ok := r.s.shops[id]
	if !ok {
		return nil, apperrors.NotFound("shop", id)
	}
	cpy := *shop
	return &cpy, nil
}

type orderRepo struct{ s *store }

func (r orderRepo) MarkLineItemReviewed(_ context.Context, orderID, productID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return false, nil
	}
	item, ok := o.LineItem(productID)
	if !ok {
		return false, nil
	}
	item.IsReviewed = true
	return true, nil
}

func (r orderRepo) ListByShopBetween(_ context.Context, shopID string, from, to time.Time) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.s.orders {
		if o.CreatedAt.Before(from) || !o.CreatedAt.Before(to) {
			continue
		}
		for _, item := range o.Cart {
			if item.ShopID == shopID {
				out = append(out, *o)
				break
			}
		}
	}
	return out, nil
}

func (r orderRepo) SalesByShopBetween(ctx context.Context, shopID string, from, to time.Time) (int, int64, error) {
	orders, _ := r.ListByShopBetween(ctx, shopID, from, to)
	var total int64
	for _, o := range orders {
		total += o.TotalPrice
	}
	return len(orders), total, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishProductCreated(context.Context, *domain.Product) error { return nil }
func (nopPublisher) PublishProductsImported(context.Context, string, string, []*domain.Product) error {
	return nil
}
func (nopPublisher) PublishProductDeleted(context.Context, *domain.Product, string) error { return nil }
func (nopPublisher) PublishProductReviewed(context.Context, event.ProductReviewedData) error {
	return nil
}

// =============================================================================
// Test server
// =============================================================================

const (
	shopID      = "5a71c0de-0000-4000-8000-000000000002"
	otherShopID = "5a71c0de-0000-4000-8000-000000000009"
	buyerID     = "b0b0b0b0-0000-4000-8000-000000000001"
	adminID     = "adadadad-0000-4000-8000-000000000001"
	orderID     = "0d0d0d0d-0000-4000-8000-000000000001"
)

type testServer struct {
	handler  http.Handler
	store    *store
	uploader *memory.Uploader
	jwt      *auth.JWTManager
}

func newTestServer(t *testing.T, opts ...func(*RouterConfig)) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := newStore()
	st.shops[shopID] = &domain.Shop{ID: shopID, Name: "Daffo Store", Email: "shop@daffodeal.io", Role: middleware.RoleSeller}

	uploader := memory.New("http://cdn.test", "products")
	pub := nopPublisher{}
	products, shops, orders := productRepo{st}, shopRepo{st}, orderRepo{st}

	svcs := Services{
		Imports:  service.NewImportService(products, shops, pub, logger),
		Products: service.NewProductService(products, shops, uploader, pub, logger),
		Reviews:  service.NewReviewService(products, orders, pub, logger),
		Shops:    service.NewShopService(shops, orders, logger),
	}
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	cfg := RouterConfig{ServiceName: "catalog-test", CORS: middleware.DefaultCORSConfig(), PublicCacheMaxAge: 30}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testServer{
		handler:  NewRouter(svcs, jwt.Validate, health.NewHandler(), cfg, logger),
		store:    st,
		uploader: uploader,
		jwt:      jwt,
	}
}

func (s *testServer) token(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := s.jwt.GenerateToken(id, id+"@daffodeal.io", role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// decodeData re-decodes the envelope data into v.
func decodeData(t *testing.T, resp httputil.Response, v any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}
