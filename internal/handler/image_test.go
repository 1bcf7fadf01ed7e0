package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediamorph/mediamorph/internal/media"
	"github.com/mediamorph/mediamorph/internal/service"
)

func newImageHandler(provider *fakeMedia) *ImageHandler {
	return NewImageHandler(service.NewImageService(provider, time.Minute))
}

func TestImageHandlerUploadUnauthorized(t *testing.T) {
	t.Parallel()

	h := newImageHandler(&fakeMedia{})

	body, contentType := multipartUpload(t, nil, "pic.png", pngMagic)
	req := httptest.NewRequest(http.MethodPost, "/api/image-upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImageHandlerUpload(t *testing.T) {
	t.Parallel()

	provider := &fakeMedia{result: media.UploadResult{PublicID: "mediaMorph Images/pic1", Bytes: 2048}}
	h := newImageHandler(provider)

	body, contentType := multipartUpload(t, nil, "pic.png", pngMagic)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/image-upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "mediaMorph Images/pic1", resp["publicId"])

	require.Len(t, provider.uploads, 1)
	require.Equal(t, media.ResourceImage, provider.uploads[0].Resource)
}

func TestImageHandlerUploadNoFile(t *testing.T) {
	t.Parallel()

	h := newImageHandler(&fakeMedia{})

	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/image-upload", nil))
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "No file uploaded")
}

func TestImageHandlerUploadInvalidFile(t *testing.T) {
	t.Parallel()

	provider := &fakeMedia{}
	h := newImageHandler(provider)

	body, contentType := multipartUpload(t, nil, "clip.webm", webmMagic)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/image-upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, provider.uploads)
}

func TestImageHandlerUploadTooLarge(t *testing.T) {
	t.Parallel()

	provider := &fakeMedia{}
	h := newImageHandler(provider)

	// 12MB payload against the 10MB image ceiling plus framing allowance
	huge := append(append([]byte{}, pngMagic...), make([]byte, 12<<20)...)
	body, contentType := multipartUpload(t, nil, "pic.png", huge)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/image-upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Empty(t, provider.uploads)
}

func TestImageHandlerUploadProviderFailure(t *testing.T) {
	t.Parallel()

	provider := &fakeMedia{uploadErr: errors.New("upstream down")}
	h := newImageHandler(provider)

	body, contentType := multipartUpload(t, nil, "pic.png", pngMagic)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/image-upload", body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Upload image failed")
}

func TestImageHandlerTransformURL(t *testing.T) {
	t.Parallel()

	h := newImageHandler(&fakeMedia{})

	req := httptest.NewRequest(http.MethodGet, "/api/image-transform?publicId=pic1&format=Twitter+Post+%2816%3A9%29", nil)
	w := httptest.NewRecorder()
	h.TransformURL(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp["url"], "w_1200,h_675")
}

func TestImageHandlerTransformURLBadRequest(t *testing.T) {
	t.Parallel()

	h := newImageHandler(&fakeMedia{})

	// Missing format
	req := httptest.NewRequest(http.MethodGet, "/api/image-transform?publicId=pic1", nil)
	w := httptest.NewRecorder()
	h.TransformURL(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown format
	req = httptest.NewRequest(http.MethodGet, "/api/image-transform?publicId=pic1&format=Polaroid", nil)
	w = httptest.NewRecorder()
	h.TransformURL(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Unknown social format")
}
