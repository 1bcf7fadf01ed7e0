package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/mediamorph/mediamorph/internal/service"
)

type WebhookHandler struct {
	webhookService *service.WebhookService
}

func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Media receives the CDN's processing notifications.
func (h *WebhookHandler) Media(w http.ResponseWriter, r *http.Request) {
	// Notifications are small JSON payloads; cap the body.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read webhook payload", "error", err)
		http.Error(w, "Failed to read payload", http.StatusBadRequest)
		return
	}
	defer func() {
		closeErr := r.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close request body", "error", closeErr)
		}
	}()

	err = h.webhookService.HandleNotification(payload, r.Header)
	if err != nil {
		slog.Error("failed to handle media webhook", "error", err)
		http.Error(w, "Failed to process webhook", http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
