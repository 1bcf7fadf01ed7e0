package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"

	"github.com/mediamorph/mediamorph/internal/repository"
)

// WebhookService handles the media CDN's processing notifications. Video
// encoding finishes asynchronously; the CDN calls back with the final byte
// count and duration, which revise the record created at upload time.
type WebhookService struct {
	videoRepo repository.VideoRepository
	secret    string
}

func NewWebhookService(videoRepo repository.VideoRepository, secret string) *WebhookService {
	return &WebhookService{
		videoRepo: videoRepo,
		secret:    secret,
	}
}

type mediaNotification struct {
	PublicID string  `json:"public_id"`
	Bytes    int64   `json:"bytes"`
	Duration float64 `json:"duration"`
}

// HandleNotification verifies and applies one processing notification.
func (s *WebhookService) HandleNotification(payload []byte, headers http.Header) error {
	if s.secret == "" {
		slog.Warn("no media webhook secret configured, skipping signature verification")
	} else {
		wh, err := standardwebhooks.NewWebhookRaw([]byte(s.secret))
		if err != nil {
			return fmt.Errorf("failed to create webhook verifier: %w", err)
		}

		httpHeaders := http.Header{}
		httpHeaders.Set("webhook-id", headers.Get("webhook-id"))
		httpHeaders.Set("webhook-timestamp", headers.Get("webhook-timestamp"))
		httpHeaders.Set("webhook-signature", headers.Get("webhook-signature"))

		err = wh.Verify(payload, httpHeaders)
		if err != nil {
			return fmt.Errorf("invalid webhook signature: %w", err)
		}
	}

	var event mediaNotification
	err := json.Unmarshal(payload, &event)
	if err != nil {
		return fmt.Errorf("failed to parse webhook: %w", err)
	}
	if event.PublicID == "" {
		return fmt.Errorf("webhook missing public_id")
	}

	slog.Info("media webhook received", "public_id", event.PublicID, "bytes", event.Bytes, "duration", event.Duration)

	err = s.videoRepo.UpdateEncoding(event.PublicID, strconv.FormatInt(event.Bytes, 10), event.Duration, time.Now())
	if err != nil {
		// Notifications also arrive for assets we keep no record of
		// (images); those are not an error.
		if errors.Is(err, repository.ErrVideoNotFound) {
			slog.Debug("media webhook for unknown asset", "public_id", event.PublicID)
			return nil
		}
		return fmt.Errorf("failed to update video encoding: %w", err)
	}

	return nil
}
