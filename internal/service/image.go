package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/mediamorph/mediamorph/internal/media"
	"github.com/mediamorph/mediamorph/internal/validation"
)

const imageUploadFolder = "mediaMorph Images"

var ErrUnknownFormat = errors.New("unknown social format")

type ImageService struct {
	media         media.Provider
	uploadTimeout time.Duration
}

func NewImageService(mediaProvider media.Provider, uploadTimeout time.Duration) *ImageService {
	return &ImageService{
		media:         mediaProvider,
		uploadTimeout: uploadTimeout,
	}
}

// Upload relays the image to the media CDN and returns its public ID. No
// local record is kept; the client uses the ID for transform requests.
func (s *ImageService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	if file == nil || header == nil {
		return "", ErrMissingFile
	}

	err := validation.ValidateFile(header, validation.ImageConstraints)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidFile, err)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	result, err := s.media.Upload(uploadCtx, file, media.UploadParams{
		Folder:   imageUploadFolder,
		Resource: media.ResourceImage,
		Filename: header.Filename,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to media provider: %w", err)
	}

	return result.PublicID, nil
}

// TransformURL returns the delivery URL for a stored image in the named
// social format.
func (s *ImageService) TransformURL(publicID, formatName string) (string, error) {
	format, ok := media.SocialFormats[formatName]
	if !ok {
		return "", ErrUnknownFormat
	}

	return s.media.URL(publicID, media.ResourceImage, format.Transform()), nil
}
