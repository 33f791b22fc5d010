// Package handler exposes the payment webhook endpoint. It sits outside the
// authenticated API surface: the caller is the payment provider, identified
// by signature rather than session.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pcnappeal/internal/payment"
	"pcnappeal/pkg/platform/httputil"
	"pcnappeal/pkg/requestcontext"
)

// maxWebhookBody bounds how much of a delivery is read. Provider payloads
// are a few KB; anything larger is hostile.
const maxWebhookBody = 1 << 20

// Reconciler processes one verified webhook delivery.
type Reconciler interface {
	HandleWebhook(ctx context.Context, body []byte, signature string, receivedAt time.Time) error
}

// Handler wires the webhook endpoint to the reconciler.
type Handler struct {
	reconciler Reconciler
	logger     *slog.Logger
}

// New constructs a payment webhook handler.
func New(reconciler Reconciler, logger *slog.Logger) *Handler {
	return &Handler{reconciler: reconciler, logger: logger}
}

// Register mounts the webhook endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/webhooks/payment", h.HandleWebhook)
}

// HandleWebhook handles POST /webhooks/payment deliveries. A nil reconciler
// error acknowledges the delivery; a non-nil error tells the provider to
// retry.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.ErrorContext(ctx, "webhook body read failed",
			"request_id", requestID,
			"error", err,
		)
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get(payment.SignatureHeader)
	if err := h.reconciler.HandleWebhook(ctx, body, signature, requestcontext.Now(ctx)); err != nil {
		h.logger.ErrorContext(ctx, "webhook processing failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
