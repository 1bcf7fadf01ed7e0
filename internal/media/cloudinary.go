package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL      = "https://api.cloudinary.com"
	defaultDeliveryBaseURL = "https://res.cloudinary.com"
)

// CloudinaryConfig holds credentials for the Cloudinary upload API.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string

	// APIBaseURL and DeliveryBaseURL override the Cloudinary endpoints,
	// used by tests.
	APIBaseURL      string
	DeliveryBaseURL string
}

// Cloudinary is a Provider backed by the Cloudinary REST upload API.
// Requests are authenticated with the SHA-1 parameter signature scheme.
type Cloudinary struct {
	cloudName       string
	apiKey          string
	apiSecret       string
	apiBaseURL      string
	deliveryBaseURL string
	client          *http.Client
}

func NewCloudinary(cfg CloudinaryConfig) *Cloudinary {
	apiBase := cfg.APIBaseURL
	if apiBase == "" {
		apiBase = defaultAPIBaseURL
	}
	deliveryBase := cfg.DeliveryBaseURL
	if deliveryBase == "" {
		deliveryBase = defaultDeliveryBaseURL
	}

	return &Cloudinary{
		cloudName:       cfg.CloudName,
		apiKey:          cfg.APIKey,
		apiSecret:       cfg.APISecret,
		apiBaseURL:      strings.TrimSuffix(apiBase, "/"),
		deliveryBaseURL: strings.TrimSuffix(deliveryBase, "/"),
		client:          &http.Client{Timeout: 2 * time.Minute},
	}
}

// uploadResponse is the subset of the Cloudinary response we consume.
type uploadResponse struct {
	PublicID string  `json:"public_id"`
	Bytes    int64   `json:"bytes"`
	Duration float64 `json:"duration"`
	Format   string  `json:"format"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload streams the file to Cloudinary and returns the stored asset.
func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, params UploadParams) (*UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// Signed params: everything except file and api_key.
	signed := map[string]string{
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	if params.Folder != "" {
		signed["folder"] = params.Folder
	}
	signature := c.sign(signed)

	go func() {
		var err error
		defer func() { _ = pw.CloseWithError(err) }()

		for k, v := range signed {
			if err = mw.WriteField(k, v); err != nil {
				return
			}
		}
		if err = mw.WriteField("api_key", c.apiKey); err != nil {
			return
		}
		if err = mw.WriteField("signature", signature); err != nil {
			return
		}

		var part io.Writer
		part, err = mw.CreateFormFile("file", params.Filename)
		if err != nil {
			return
		}
		if _, err = io.Copy(part, file); err != nil {
			return
		}
		err = mw.Close()
	}()

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/upload", c.apiBaseURL, c.cloudName, params.Resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError("upload", resp)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("cloudinary upload response missing public_id")
	}

	return &UploadResult{
		PublicID: result.PublicID,
		Bytes:    result.Bytes,
		Duration: result.Duration,
		Format:   result.Format,
	}, nil
}

// Destroy removes a stored asset.
func (c *Cloudinary) Destroy(ctx context.Context, publicID string, resource ResourceType) error {
	signed := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}

	form := url.Values{}
	for k, v := range signed {
		form.Set(k, v)
	}
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(signed))

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/destroy", c.apiBaseURL, c.cloudName, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary destroy request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.apiError("destroy", resp)
	}

	return nil
}

// URL builds a delivery URL, optionally with a transformation segment.
func (c *Cloudinary) URL(publicID string, resource ResourceType, transform string) string {
	if transform != "" {
		return fmt.Sprintf("%s/%s/%s/upload/%s/%s", c.deliveryBaseURL, c.cloudName, resource, transform, publicID)
	}
	return fmt.Sprintf("%s/%s/%s/upload/%s", c.deliveryBaseURL, c.cloudName, resource, publicID)
}

// sign computes the Cloudinary request signature: the signed params sorted
// by key, serialized as a query string, concatenated with the API secret
// and hashed with SHA-1.
func (c *Cloudinary) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

func (c *Cloudinary) apiError(op string, resp *http.Response) error {
	var apiErr errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("cloudinary %s failed: %s (status %d)", op, apiErr.Error.Message, resp.StatusCode)
	}
	return fmt.Errorf("cloudinary %s failed with status %d", op, resp.StatusCode)
}
