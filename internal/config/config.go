package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Identity provider session verification
	SessionJWTSecret string

	// Media CDN
	MediaProvider      string // "cloudinary" or "s3"
	MediaWebhookSecret string
	MediaUploadTimeout time.Duration
	MaxVideoUploadSize int64 // bytes

	// Media - Cloudinary
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Media - S3-compatible (MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string // Optional: for S3-compatible services
	S3PresignExpiry time.Duration

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "MediaMorph"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/mediamorph.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Identity
		SessionJWTSecret: envRequired("SESSION_JWT_SECRET"),

		// Media
		MediaProvider:      envString("MEDIA_PROVIDER", "cloudinary"),
		MediaWebhookSecret: envString("MEDIA_WEBHOOK_SECRET", ""),
		MediaUploadTimeout: envDuration("MEDIA_UPLOAD_TIMEOUT", 60*time.Second),
		MaxVideoUploadSize: envInt64("MAX_VIDEO_UPLOAD_SIZE", 70<<20), // 70 MiB

		CloudinaryCloudName: envString("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    envString("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: envString("CLOUDINARY_API_SECRET", ""),

		S3Region:        envString("S3_REGION", ""),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows the webhook secret to be empty so local uploads work without a tunnel.
func validateProduction(cfg *Config) {
	if cfg.MediaWebhookSecret == "" {
		slog.Error("production deployment requires MEDIA_WEBHOOK_SECRET",
			"hint", "set APP_ENV=development to accept unsigned media notifications locally")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
// Safe to expose in ctx, templates and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		MediaProvider:       c.MediaProvider,
		MaxVideoUploadSize:  c.MaxVideoUploadSize,
		CloudinaryCloudName: c.CloudinaryCloudName,

		S3Endpoint: c.S3Endpoint,
	}
}
