package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config holds configuration for the S3-compatible provider.
type S3Config struct {
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Endpoint      string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	PresignExpiry time.Duration
}

// S3Provider is a self-hosted Provider over any S3-compatible object store.
// It stores and serves originals only: there is no transcoding, so upload
// results report the stored byte count and zero duration, and URL ignores
// the transformation segment.
type S3Provider struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	publicURL     string
	presignExpiry time.Duration
}

// NewS3Provider creates a provider over AWS S3, MinIO, DigitalOcean Spaces,
// Cloudflare R2, Backblaze B2, etc.
func NewS3Provider(cfg S3Config) (*S3Provider, error) {
	ctx := context.Background()

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	// Add static credentials if provided
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional custom endpoint
	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO and some S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	publicURL := cfg.Endpoint
	if publicURL == "" {
		// Standard AWS S3 URL
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	} else {
		// Custom endpoint (MinIO, DO Spaces, etc.)
		publicURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	provider := &S3Provider{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicURL:     publicURL,
		presignExpiry: cfg.PresignExpiry,
	}

	// Auto-create bucket if it doesn't exist
	if err := provider.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return provider, nil
}

// ensureBucket checks if bucket exists, creates it if not
func (p *S3Provider) ensureBucket(ctx context.Context) error {
	_, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.bucket),
	})
	if err == nil {
		return nil // Bucket exists
	}

	_, err = p.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(p.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", p.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", p.bucket)
	return nil
}

// countingReader tracks how many bytes pass through to report Bytes in the
// upload result, since S3 does not echo the object size back.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}

// Upload stores the file under a generated key and returns it as public ID.
func (p *S3Provider) Upload(ctx context.Context, file io.Reader, params UploadParams) (*UploadResult, error) {
	key := path.Join(params.Folder, uuid.New().String()+filepath.Ext(params.Filename))

	counter := &countingReader{r: file}
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   counter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	ext := strings.TrimPrefix(filepath.Ext(params.Filename), ".")
	return &UploadResult{
		PublicID: key,
		Bytes:    counter.n,
		Format:   ext,
	}, nil
}

// Destroy removes the object from the bucket.
func (p *S3Provider) Destroy(ctx context.Context, publicID string, resource ResourceType) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// URL returns a presigned GET URL for the object. The transformation
// segment is ignored; originals are served as stored.
func (p *S3Provider) URL(publicID string, resource ResourceType, transform string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	presignedReq, err := p.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(publicID),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = p.presignExpiry
	})
	if err != nil {
		// Fallback to direct URL if presigning fails
		return fmt.Sprintf("%s/%s", p.publicURL, publicID)
	}

	return presignedReq.URL
}
