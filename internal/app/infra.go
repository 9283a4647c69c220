package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daffodeal/marketplace/migrations"
	"github.com/daffodeal/marketplace/pkg/database"
	"github.com/daffodeal/marketplace/pkg/httpclient"

	"github.com/daffodeal/marketplace/internal/config"
	"github.com/daffodeal/marketplace/internal/storage"
	"github.com/daffodeal/marketplace/internal/storage/cloudinary"
	"github.com/daffodeal/marketplace/internal/storage/memory"
)

// ConnectPostgres opens the connection pool and applies pending migrations.
func ConnectPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL
	pgCfg.MaxConns = cfg.PostgresMaxConns

	database.SetSlowQueryLogging(cfg.SlowQuery, logger)

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")
	return pool, nil
}

// NewUploader builds the image uploader selected by IMAGE_UPLOADER.
// Cloudinary calls go through a retrying client behind a circuit breaker.
func NewUploader(cfg *config.Config, logger *slog.Logger) (storage.Uploader, error) {
	switch cfg.ImageUploader {
	case config.UploaderCloudinary:
		hc := httpclient.DefaultConfig()
		hc.Timeout = 60 * time.Second
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(hc),
			httpclient.DefaultCircuitBreakerConfig("cloudinary"),
			logger,
		)
		uploader, err := cloudinary.New(cloudinary.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.ImageFolder,
			APIBase:   cfg.CloudinaryAPIBase,
		}, client, logger)
		if err != nil {
			return nil, fmt.Errorf("create cloudinary uploader: %w", err)
		}
		logger.Info("image uploader initialized", slog.String("backend", config.UploaderCloudinary))
		return uploader, nil
	default:
		logger.Info("image uploader initialized",
			slog.String("backend", config.UploaderMemory),
			slog.String("base_url", cfg.MediaURL()),
		)
		return memory.New(cfg.MediaURL(), cfg.ImageFolder), nil
	}
}
