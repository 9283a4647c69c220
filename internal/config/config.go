package config

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "github.com/daffodeal/marketplace/pkg/config"
)

// Image uploader backends.
const (
	UploaderMemory     = "memory"
	UploaderCloudinary = "cloudinary"
)

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort          int      `env:"CATALOG_HTTP_PORT" envDefault:"8000"`
	MaxUploadBytes    int64    `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	CORSOrigins       []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	PublicCacheMaxAge int      `env:"PUBLIC_CACHE_MAX_AGE" envDefault:"0"`
	WriteRateLimit    float64  `env:"WRITE_RATE_LIMIT_RPS" envDefault:"5"`
	WriteRateBurst    int      `env:"WRITE_RATE_LIMIT_BURST" envDefault:"10"`

	// PostgreSQL
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"daffodeal"`
	PostgresPass     string        `env:"POSTGRES_PASSWORD" envDefault:"daffodeal_secret"`
	PostgresDB       string        `env:"CATALOG_DB_NAME" envDefault:"marketplace"`
	PostgresSSL      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns int32         `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	SlowQuery        time.Duration `env:"POSTGRES_SLOW_QUERY" envDefault:"200ms"`

	// Redis shop cache
	RedisEnabled  bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	ShopCacheTTL  time.Duration `env:"SHOP_CACHE_TTL" envDefault:"10m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Auth
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"72h"`

	// Images
	ImageUploader       string `env:"IMAGE_UPLOADER" envDefault:"memory"`
	ImageFolder         string `env:"IMAGE_FOLDER" envDefault:"products"`
	MediaBaseURL        string `env:"MEDIA_BASE_URL" envDefault:""`
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME" envDefault:""`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY" envDefault:""`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET" envDefault:""`
	CloudinaryAPIBase   string `env:"CLOUDINARY_API_BASE" envDefault:""`
	PurgeImagesOnDelete bool   `env:"PURGE_IMAGES_ON_DELETE" envDefault:"false"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom is Load over an explicit variable set instead of the process
// environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, vars); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return errors.New("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return errors.New("POSTGRES_USER is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.PublicCacheMaxAge < 0 {
		return fmt.Errorf("PUBLIC_CACHE_MAX_AGE must not be negative, got %d", c.PublicCacheMaxAge)
	}
	if c.WriteRateLimit < 0 || c.WriteRateBurst < 0 {
		return fmt.Errorf("WRITE_RATE_LIMIT_RPS and WRITE_RATE_LIMIT_BURST must not be negative, got %v and %d",
			c.WriteRateLimit, c.WriteRateBurst)
	}
	if c.RedisEnabled && (c.RedisPort < 1 || c.RedisPort > 65535) {
		return fmt.Errorf("invalid Redis port: %d", c.RedisPort)
	}

	switch c.ImageUploader {
	case UploaderMemory:
	case UploaderCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required when IMAGE_UPLOADER=cloudinary")
		}
	default:
		return fmt.Errorf("IMAGE_UPLOADER must be %q or %q, got %q", UploaderMemory, UploaderCloudinary, c.ImageUploader)
	}

	// Outside development, require an explicitly set, strong JWT secret.
	if c.Environment != "development" {
		if c.JWTSecret == "change-this-to-a-secure-secret" {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}
	return nil
}

// MediaURL returns the base URL the memory uploader serves images under.
func (c *Config) MediaURL() string {
	if c.MediaBaseURL != "" {
		return c.MediaBaseURL
	}
	return fmt.Sprintf("http://localhost:%d", c.HTTPPort)
}
