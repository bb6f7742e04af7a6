// Package handler provides HTTP handlers for the auto-me-bot application.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/auto-me-bot/internal/core"
)

// Receiver consumes verified webhook deliveries.
type Receiver interface {
	Receive(ctx context.Context, d core.Delivery) error
}

// WebhookHandler processes incoming webhooks from GitHub.
type WebhookHandler struct {
	secret   []byte
	receiver Receiver
	logger   *slog.Logger
}

// NewWebhookHandler creates a new webhook handler verifying deliveries with secret.
func NewWebhookHandler(secret string, receiver Receiver, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:   []byte(secret),
		receiver: receiver,
		logger:   logger,
	}
}

// Handle processes GitHub webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, h.secret)
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	delivery := core.Delivery{
		ID:      github.DeliveryID(r),
		Name:    github.WebHookType(r),
		Payload: payload,
	}
	if delivery.Name == "" {
		http.Error(w, "Missing event type", http.StatusBadRequest)
		return
	}

	if err := h.receiver.Receive(r.Context(), delivery); err != nil {
		h.logger.Error("failed to handle webhook delivery", "delivery", delivery.ID, "event", delivery.Name, "error", err)
		http.Error(w, "Failed to handle delivery", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("webhook delivery handled", "delivery", delivery.ID, "event", delivery.Name)
	_, _ = fmt.Fprint(w, "OK")
}
