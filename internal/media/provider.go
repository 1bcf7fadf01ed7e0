package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mediamorph/mediamorph/internal/config"
)

// ResourceType selects the CDN processing pipeline for an asset.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// UploadParams describes one asset handed to the CDN.
type UploadParams struct {
	Folder   string
	Resource ResourceType
	Filename string
}

// UploadResult is the CDN's answer for a stored asset. PublicID is the
// opaque reference everything else keys on. Duration is zero for images
// and may be zero for videos until the processing notification arrives.
type UploadResult struct {
	PublicID string
	Bytes    int64
	Duration float64
	Format   string
}

// Provider is a media CDN: it stores binaries, serves derived renditions
// and can discard assets again. Implementations must not retry internally;
// the caller owns the timeout via ctx.
type Provider interface {
	Upload(ctx context.Context, file io.Reader, params UploadParams) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string, resource ResourceType) error

	// URL returns a delivery URL for the asset. transform is a provider
	// transformation segment (see Transforms) and may be empty.
	URL(publicID string, resource ResourceType, transform string) string
}

// NewProvider creates a media provider based on configuration
func NewProvider(cfg *config.Config) (Provider, error) {
	provider := cfg.MediaProvider

	slog.Info("initializing media provider", "provider", provider)

	switch provider {
	case "cloudinary":
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required when using the Cloudinary provider")
		}
		return NewCloudinary(CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		}), nil

	case "s3":
		if cfg.S3Region == "" || cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_REGION and S3_BUCKET are required when using the S3 provider")
		}
		return NewS3Provider(S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Endpoint:      cfg.S3Endpoint,
			PresignExpiry: cfg.S3PresignExpiry,
		})

	default:
		return nil, fmt.Errorf("unknown media provider: %s (supported: cloudinary, s3)", provider)
	}
}
