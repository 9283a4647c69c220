package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/daffodeal/marketplace/pkg/database"
	"github.com/daffodeal/marketplace/pkg/health"
	pkgkafka "github.com/daffodeal/marketplace/pkg/kafka"
	"github.com/daffodeal/marketplace/pkg/middleware"
	"github.com/daffodeal/marketplace/pkg/tracing"

	"github.com/daffodeal/marketplace/internal/auth"
	"github.com/daffodeal/marketplace/internal/config"
	"github.com/daffodeal/marketplace/internal/event"
	handler "github.com/daffodeal/marketplace/internal/handler/http"
	"github.com/daffodeal/marketplace/internal/repository"
	"github.com/daffodeal/marketplace/internal/repository/postgres"
	"github.com/daffodeal/marketplace/internal/repository/redis"
	"github.com/daffodeal/marketplace/internal/service"
)

// ServiceName identifies the catalog service in logs, traces and metrics.
const ServiceName = "catalog-service"

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	tracerShutdown tracing.ShutdownFunc
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := ConnectPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	database.RegisterPoolMetrics(pool, ServiceName)

	a := &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		tracerShutdown: tracerShutdown,
	}

	var shops repository.ShopRepository = postgres.NewShopRepository(pool)
	if cfg.RedisEnabled {
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		shops = redis.NewShopCache(shops, client, cfg.ShopCacheTTL, logger)
		logger.Info("shop cache enabled", slog.Duration("ttl", cfg.ShopCacheTTL))
	}

	uploader, err := NewUploader(cfg, logger)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	events := event.NewProducer(a.producer, logger)

	// Build the dependency graph.
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	svcs := handler.Services{
		Imports:  service.NewImportService(products, shops, events, logger),
		Products: service.NewProductService(products, shops, uploader, events, logger, service.WithImagePurge(cfg.PurgeImagesOnDelete)),
		Reviews:  service.NewReviewService(products, orders, events, logger),
		Shops:    service.NewShopService(shops, orders, logger),
	}
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if a.redis != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}
	healthHandler.Register("kafka", a.producer.Ping)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins

	router := handler.NewRouter(svcs, tokens.Validate, healthHandler, handler.RouterConfig{
		ServiceName:       ServiceName,
		CORS:              cors,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		PublicCacheMaxAge: cfg.PublicCacheMaxAge,
		WriteRateLimit:    cfg.WriteRateLimit,
		WriteRateBurst:    cfg.WriteRateBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}
	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
	a.closeStores()

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeStores() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	a.pool.Close()
}
