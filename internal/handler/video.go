package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mediamorph/mediamorph/internal/ctxkeys"
	"github.com/mediamorph/mediamorph/internal/model"
	"github.com/mediamorph/mediamorph/internal/service"
)

type VideoHandler struct {
	videoService *service.VideoService
}

func NewVideoHandler(videoService *service.VideoService) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
	}
}

// List returns every video, most recent first. Publicly reachable.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videoService.List()
	if err != nil {
		slog.Error("failed to fetch videos", "error", err)
		respondError(w, http.StatusInternalServerError, "Error fetching videos")
		return
	}

	if videos == nil {
		videos = []*model.Video{}
	}

	respondJSON(w, http.StatusOK, videos)
}

// Upload accepts a multipart video submission and relays it to the media CDN.
func (h *VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	maxSize := h.videoService.MaxUploadSize()
	// Cap the request body before parsing; the extra megabyte covers
	// multipart framing and the text fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "File size should be less than 70MB")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	// An oversized part can fit under the body cap; it is still a size
	// violation, not a validation failure.
	if header.Size > maxSize {
		respondError(w, http.StatusRequestEntityTooLarge, "File size should be less than 70MB")
		return
	}

	video, err := h.videoService.Upload(r.Context(), service.VideoUploadInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		OriginalSize: r.FormValue("originalSize"),
		File:         file,
		Header:       header,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidFile) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("video upload failed", "error", err, "user_id", identity.UserID)
		respondError(w, http.StatusInternalServerError, "Upload video failed")
		return
	}

	slog.Info("video uploaded", "video_id", video.ID, "public_id", video.PublicID, "user_id", identity.UserID)
	respondJSON(w, http.StatusOK, video)
}

// PreviewURL returns the short preview rendition URL for a video.
func (h *VideoHandler) PreviewURL(w http.ResponseWriter, r *http.Request) {
	publicID := r.URL.Query().Get("publicId")
	if publicID == "" {
		respondError(w, http.StatusBadRequest, "publicId is required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": h.videoService.PreviewURL(publicID)})
}

// DownloadURL returns the attachment-disposition URL for a video.
func (h *VideoHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	publicID := r.URL.Query().Get("publicId")
	if publicID == "" {
		respondError(w, http.StatusBadRequest, "publicId is required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": h.videoService.DownloadURL(publicID)})
}
