package ocr

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "pcnappeal/pkg/domain-errors"
	"pcnappeal/pkg/platform/httputil"
	"pcnappeal/pkg/requestcontext"
)

// Extractor is the client-side extraction operation.
type Extractor interface {
	Extract(ctx context.Context, imageBase64, contentType string) (Extraction, error)
}

// Handler exposes the OCR proxy endpoint.
type Handler struct {
	extractor Extractor
	logger    *slog.Logger
}

func NewHandler(extractor Extractor, logger *slog.Logger) *Handler {
	return &Handler{extractor: extractor, logger: logger}
}

// Register mounts the OCR endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/ocr/extract", h.HandleExtract)
}

// ExtractRequest is the HTTP request for POST /ocr/extract.
type ExtractRequest struct {
	ImageBase64 string `json:"image_base64"`
	ContentType string `json:"content_type"`
}

// HandleExtract handles POST /ocr/extract requests.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ExtractRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.ImageBase64 == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "image_base64 is required"))
		return
	}

	extraction, err := h.extractor.Extract(ctx, req.ImageBase64, req.ContentType)
	if err != nil {
		h.logger.ErrorContext(ctx, "extraction failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, extraction)
}
