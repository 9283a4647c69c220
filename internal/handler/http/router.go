package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daffodeal/marketplace/pkg/health"
	"github.com/daffodeal/marketplace/pkg/middleware"

	"github.com/daffodeal/marketplace/internal/service"
)

// Services bundles the use cases the router exposes.
type Services struct {
	Imports  *service.ImportService
	Products *service.ProductService
	Reviews  *service.ReviewService
	Shops    *service.ShopService
}

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	ServiceName    string
	CORS           middleware.CORSConfig
	MaxUploadBytes int64
	// PublicCacheMaxAge is the Cache-Control max-age, in seconds, of the
	// anonymous catalog reads. Zero disables caching.
	PublicCacheMaxAge int
	// WriteRateLimit throttles catalog imports and review submissions per
	// caller, in requests per second. Zero disables throttling.
	WriteRateLimit float64
	WriteRateBurst int
}

// NewRouter creates a chi router with every catalog route registered.
func NewRouter(
	svcs Services,
	validate middleware.TokenValidator,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	products := NewProductHandler(svcs.Imports, svcs.Products, cfg.MaxUploadBytes, logger)
	reviews := NewReviewHandler(svcs.Reviews, logger)
	shops := NewShopHandler(svcs.Shops, logger)

	authenticated := func(r chi.Router) chi.Router {
		return r.With(middleware.Auth(validate), middleware.RequestLogger(logger))
	}
	sellers := middleware.RequireRole(middleware.RoleSeller, middleware.RoleAdmin)
	importLimit := middleware.RateLimit(cfg.WriteRateLimit, cfg.WriteRateBurst, logger)
	reviewLimit := middleware.RateLimit(cfg.WriteRateLimit, cfg.WriteRateBurst, logger)

	r.Route("/api/v2/product", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			if cfg.PublicCacheMaxAge > 0 {
				r.Use(middleware.CacheControl(cfg.PublicCacheMaxAge))
			}
			r.Get("/get-all-products", products.ListProducts)
			r.Get("/get-all-products-shop/{id}", products.ListShopProducts)
			r.Get("/{id}", products.GetProduct)
		})

		authenticated(r).With(sellers, importLimit).Post("/create-products", products.ImportProducts)
		authenticated(r).With(sellers).Post("/create-product", products.CreateProduct)
		authenticated(r).With(sellers).Delete("/delete-shop-product/{id}", products.DeleteProduct)
		authenticated(r).With(reviewLimit).Put("/create-new-review", reviews.CreateReview)
		authenticated(r).With(middleware.RequireRole(middleware.RoleAdmin)).Get("/admin-all-products", products.AdminListProducts)
	})

	r.Route("/api/v2/shop", func(r chi.Router) {
		r.Get("/get-shop-info/{id}", shops.GetShopInfo)
		authenticated(r).With(sellers).Get("/monthly-report/{shopId}", shops.MonthlyReport)
	})

	return r
}
