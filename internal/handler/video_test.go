package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediamorph/mediamorph/internal/ctxkeys"
	"github.com/mediamorph/mediamorph/internal/media"
	"github.com/mediamorph/mediamorph/internal/model"
	"github.com/mediamorph/mediamorph/internal/repository"
	"github.com/mediamorph/mediamorph/internal/service"
)

var webmMagic = append([]byte{0x1A, 0x45, 0xDF, 0xA3}, make([]byte, 64)...)

var pngMagic = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, make([]byte, 64)...)

type fakeMedia struct {
	mu        sync.Mutex
	uploads   []media.UploadParams
	destroyed []string
	uploadErr error
	result    media.UploadResult
}

func (f *fakeMedia) Upload(ctx context.Context, file io.Reader, params media.UploadParams) (*media.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, params)
	result := f.result
	return &result, nil
}

func (f *fakeMedia) Destroy(ctx context.Context, publicID string, resource media.ResourceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

func (f *fakeMedia) URL(publicID string, resource media.ResourceType, transform string) string {
	if transform == "" {
		return "https://cdn.test/" + string(resource) + "/" + publicID
	}
	return "https://cdn.test/" + string(resource) + "/" + transform + "/" + publicID
}

type fakeVideoRepo struct {
	mu        sync.Mutex
	videos    []*model.Video
	createErr error
	allErr    error
}

func (f *fakeVideoRepo) Create(video *model.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	f.videos = append(f.videos, video)
	return nil
}

func (f *fakeVideoRepo) All() ([]*model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.videos, nil
}

func (f *fakeVideoRepo) ByID(id string) (*model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, repository.ErrVideoNotFound
}

func (f *fakeVideoRepo) ByPublicID(publicID string) (*model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.videos {
		if v.PublicID == publicID {
			return v, nil
		}
	}
	return nil, repository.ErrVideoNotFound
}

func (f *fakeVideoRepo) UpdateEncoding(publicID, compressedSize string, duration float64, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.videos {
		if v.PublicID == publicID {
			v.CompressedSize = compressedSize
			v.Duration = duration
			v.UpdatedAt = updatedAt
			return nil
		}
	}
	return repository.ErrVideoNotFound
}

// multipartUpload builds a request body with text fields and one file part.
func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func authenticated(req *http.Request) *http.Request {
	return req.WithContext(ctxkeys.WithIdentity(req.Context(), &model.Identity{UserID: "user_1"}))
}

func newVideoHandler(repo *fakeVideoRepo, provider *fakeMedia, maxUploadSize int64) *VideoHandler {
	svc := service.NewVideoService(repo, provider, time.Minute, maxUploadSize)
	return NewVideoHandler(svc)
}

func TestVideoHandlerListEmpty(t *testing.T) {
	t.Parallel()

	h := newVideoHandler(&fakeVideoRepo{}, &fakeMedia{}, 70<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// Empty catalog serializes as an empty array, never null
	require.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestVideoHandlerList(t *testing.T) {
	t.Parallel()

	repo := &fakeVideoRepo{videos: []*model.Video{
		{ID: "b", Title: "second", PublicID: "video-uploads/b", Duration: 5},
		{ID: "a", Title: "first", PublicID: "video-uploads/a", Duration: 7},
	}}
	h := newVideoHandler(repo, &fakeMedia{}, 70<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var videos []*model.Video
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &videos))
	require.Len(t, videos, 2)
	require.Equal(t, "b", videos[0].ID)
	require.Equal(t, "a", videos[1].ID)
}

func TestVideoHandlerListError(t *testing.T) {
	t.Parallel()

	repo := &fakeVideoRepo{allErr: errors.New("db gone")}
	h := newVideoHandler(repo, &fakeMedia{}, 70<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Error fetching videos")
}

func TestVideoHandlerUploadUnauthorized(t *testing.T) {
	t.Parallel()

	h := newVideoHandler(&fakeVideoRepo{}, &fakeMedia{}, 70<<20)

	body, contentType := multipartUpload(t, nil, "clip.webm", webmMagic)
	req := httptest.NewRequest(http.MethodPost, "/api/video-upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVideoHandlerUpload(t *testing.T) {
	t.Parallel()

	repo := &fakeVideoRepo{}
	provider := &fakeMedia{result: media.UploadResult{PublicID: "video-uploads/ok", Bytes: 2048, Duration: 9.5}}
	h := newVideoHandler(repo, provider, 70<<20)

	body, contentType := multipartUpload(t, map[string]string{
		"title":        "launch",
		"description":  "demo",
		"originalSize": "4096",
	}, "clip.webm", webmMagic)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/video-upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var video model.Video
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &video))
	require.Equal(t, "launch", video.Title)
	require.Equal(t, "video-uploads/ok", video.PublicID)
	require.Equal(t, "4096", video.OriginalSize)
	require.Equal(t, "2048", video.CompressedSize)
	require.Len(t, repo.videos, 1)
}

func TestVideoHandlerUploadNoFile(t *testing.T) {
	t.Parallel()

	h := newVideoHandler(&fakeVideoRepo{}, &fakeMedia{}, 70<<20)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "no file here"))
	require.NoError(t, mw.Close())

	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/video-upload", &buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "No file uploaded")
}

func TestVideoHandlerUploadInvalidFile(t *testing.T) {
	t.Parallel()

	provider := &fakeMedia{}
	h := newVideoHandler(&fakeVideoRepo{}, provider, 70<<20)

	body, contentType := multipartUpload(t, nil, "notes.txt", []byte("plain text, not a video"))
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/video-upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, provider.uploads)
}

func TestVideoHandlerUploadTooLarge(t *testing.T) {
	t.Parallel()

	// Ceiling of 1KB means the body cap sits just above 1MB
	h := newVideoHandler(&fakeVideoRepo{}, &fakeMedia{}, 1024)

	huge := append([]byte{0x1A, 0x45, 0xDF, 0xA3}, make([]byte, 2<<20)...)
	body, contentType := multipartUpload(t, nil, "clip.webm", huge)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/video-upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Contains(t, w.Body.String(), "File size should be less than 70MB")
}

func TestVideoHandlerUploadOverLimitUnderBodyCap(t *testing.T) {
	t.Parallel()

	// 68 byte file against a 32 byte ceiling: the body fits under the
	// MaxBytesReader cap but the file itself is still too large
	h := newVideoHandler(&fakeVideoRepo{}, &fakeMedia{}, 32)

	body, contentType := multipartUpload(t, nil, "clip.webm", webmMagic)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/video-upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestVideoHandlerUploadPersistFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeVideoRepo{createErr: errors.New("disk full")}
	provider := &fakeMedia{result: media.UploadResult{PublicID: "video-uploads/orphan", Bytes: 1}}
	h := newVideoHandler(repo, provider, 70<<20)

	body, contentType := multipartUpload(t, nil, "clip.webm", webmMagic)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/video-upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Upload video failed")
}

func TestVideoHandlerPreviewURL(t *testing.T) {
	t.Parallel()

	h := newVideoHandler(&fakeVideoRepo{}, &fakeMedia{}, 70<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/video-preview?publicId=video-uploads/abc", nil)
	w := httptest.NewRecorder()
	h.PreviewURL(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp["url"], "e_preview")

	req = httptest.NewRequest(http.MethodGet, "/api/video-preview", nil)
	w = httptest.NewRecorder()
	h.PreviewURL(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVideoHandlerDownloadURL(t *testing.T) {
	t.Parallel()

	h := newVideoHandler(&fakeVideoRepo{}, &fakeMedia{}, 70<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/video-download?publicId=video-uploads/abc", nil)
	w := httptest.NewRecorder()
	h.DownloadURL(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp["url"], "fl_attachment")

	req = httptest.NewRequest(http.MethodGet, "/api/video-download", nil)
	w = httptest.NewRecorder()
	h.DownloadURL(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
