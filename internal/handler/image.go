package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mediamorph/mediamorph/internal/ctxkeys"
	"github.com/mediamorph/mediamorph/internal/service"
	"github.com/mediamorph/mediamorph/internal/validation"
)

type ImageHandler struct {
	imageService *service.ImageService
}

func NewImageHandler(imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
	}
}

// Upload accepts a multipart image and relays it to the media CDN. The
// response carries only the CDN's public ID; the client requests
// transforms with it later.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Cap the request body before parsing; the extra megabyte covers
	// multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, validation.ImageConstraints.MaxSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "File size should be less than 10MB")
			return
		}
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	publicID, err := h.imageService.Upload(r.Context(), file, header)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFile) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("image upload failed", "error", err, "user_id", identity.UserID)
		respondError(w, http.StatusInternalServerError, "Upload image failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"publicId": publicID})
}

// TransformURL returns the delivery URL for an image in a named social format.
func (h *ImageHandler) TransformURL(w http.ResponseWriter, r *http.Request) {
	publicID := r.URL.Query().Get("publicId")
	formatName := r.URL.Query().Get("format")
	if publicID == "" || formatName == "" {
		respondError(w, http.StatusBadRequest, "publicId and format are required")
		return
	}

	url, err := h.imageService.TransformURL(publicID, formatName)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown social format")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
