package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mediamorph/mediamorph/internal/media"
	"github.com/mediamorph/mediamorph/internal/model"
	"github.com/mediamorph/mediamorph/internal/repository"
	"github.com/mediamorph/mediamorph/internal/validation"
)

const videoUploadFolder = "video-uploads"

var (
	ErrMissingFile = errors.New("no file uploaded")
	ErrInvalidFile = errors.New("invalid file")
)

type VideoService struct {
	videoRepo     repository.VideoRepository
	media         media.Provider
	uploadTimeout time.Duration
	maxUploadSize int64
}

func NewVideoService(videoRepo repository.VideoRepository, mediaProvider media.Provider, uploadTimeout time.Duration, maxUploadSize int64) *VideoService {
	return &VideoService{
		videoRepo:     videoRepo,
		media:         mediaProvider,
		uploadTimeout: uploadTimeout,
		maxUploadSize: maxUploadSize,
	}
}

// MaxUploadSize is the server-side ceiling for one video payload in bytes.
func (s *VideoService) MaxUploadSize() int64 {
	return s.maxUploadSize
}

// VideoUploadInput carries one multipart video submission.
type VideoUploadInput struct {
	Title        string
	Description  string
	OriginalSize string
	File         multipart.File
	Header       *multipart.FileHeader
}

// Upload relays the video to the media CDN and persists its metadata.
// If persistence fails after the CDN accepted the asset, the asset is
// destroyed again so no orphan is left behind.
func (s *VideoService) Upload(ctx context.Context, in VideoUploadInput) (*model.Video, error) {
	if in.File == nil || in.Header == nil {
		return nil, ErrMissingFile
	}

	err := validation.ValidateFile(in.Header, validation.VideoConstraints(s.maxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, err)
	}

	// The declared size is client input; sizes are stored as non-negative
	// decimal strings, so reject anything else before touching the CDN.
	originalSize := strconv.FormatInt(in.Header.Size, 10)
	if in.OriginalSize != "" {
		n, parseErr := strconv.ParseInt(in.OriginalSize, 10, 64)
		if parseErr != nil || n < 0 {
			return nil, fmt.Errorf("%w: originalSize must be a non-negative byte count", ErrInvalidFile)
		}
		originalSize = in.OriginalSize
	}

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	result, err := s.media.Upload(uploadCtx, in.File, media.UploadParams{
		Folder:   videoUploadFolder,
		Resource: media.ResourceVideo,
		Filename: in.Header.Filename,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload video to media provider: %w", err)
	}

	now := time.Now()
	video := &model.Video{
		ID:             uuid.New().String(),
		Title:          in.Title,
		Description:    in.Description,
		PublicID:       result.PublicID,
		OriginalSize:   originalSize,
		CompressedSize: strconv.FormatInt(result.Bytes, 10),
		Duration:       result.Duration,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.videoRepo.Create(video)
	if err != nil {
		// The asset is already at the CDN; destroy it so the failed insert
		// leaves no orphan behind.
		destroyCtx, destroyCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer destroyCancel()

		destroyErr := s.media.Destroy(destroyCtx, result.PublicID, media.ResourceVideo)
		if destroyErr != nil {
			slog.Error("failed to destroy media asset during cleanup", "error", destroyErr, "public_id", result.PublicID)
		}
		return nil, fmt.Errorf("failed to create video record: %w", err)
	}

	return video, nil
}

// List returns all videos, most recent first.
func (s *VideoService) List() ([]*model.Video, error) {
	return s.videoRepo.All()
}

// PreviewURL returns the short preview rendition for a stored video.
func (s *VideoService) PreviewURL(publicID string) string {
	return s.media.URL(publicID, media.ResourceVideo, media.VideoPreviewTransform)
}

// DownloadURL returns the full rendition with attachment disposition.
func (s *VideoService) DownloadURL(publicID string) string {
	return s.media.URL(publicID, media.ResourceVideo, media.VideoDownloadTransform)
}
