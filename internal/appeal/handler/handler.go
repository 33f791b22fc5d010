// Package handler exposes the appeal case lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pcnappeal/internal/appeal"
	"pcnappeal/internal/audit"
	"pcnappeal/internal/payment"
	id "pcnappeal/pkg/domain"
	dErrors "pcnappeal/pkg/domain-errors"
	"pcnappeal/pkg/platform/httputil"
	"pcnappeal/pkg/requestcontext"
)

// Service defines the case operations the handler needs.
type Service interface {
	Create(ctx context.Context, in appeal.CreateInput) (appeal.Case, error)
	Get(ctx context.Context, caseID id.CaseID) (appeal.Case, error)
	ListByUser(ctx context.Context) ([]appeal.Case, error)
	Analyze(ctx context.Context, caseID id.CaseID) (appeal.Case, error)
	Checkout(ctx context.Context, caseID id.CaseID) (appeal.Case, error)
	CancelPayment(ctx context.Context, caseID id.CaseID) (appeal.Case, error)
	GenerateLetter(ctx context.Context, caseID id.CaseID) (appeal.Case, error)
	AuditTrail(ctx context.Context, caseID id.CaseID) ([]audit.Event, error)
}

// Handler wires appeal endpoints to the case service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an appeal handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts appeal endpoints on the router. The router is expected to
// run authentication middleware first; every endpoint needs a user.
func (h *Handler) Register(r chi.Router) {
	r.Post("/appeals", h.HandleCreate)
	r.Get("/appeals", h.HandleList)
	r.Get("/appeals/{caseID}", h.HandleGet)
	r.Post("/appeals/{caseID}/analyze", h.HandleAnalyze)
	r.Post("/appeals/{caseID}/checkout", h.HandleCheckout)
	r.Post("/appeals/{caseID}/payment-canceled", h.HandlePaymentCanceled)
	r.Post("/appeals/{caseID}/letter", h.HandleGenerateLetter)
	r.Get("/appeals/{caseID}/events", h.HandleAuditTrail)
}

// HandleCreate handles POST /appeals requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateCaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.Create(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "case creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromCase(c))
}

// HandleList handles GET /appeals requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cases, err := h.service.ListByUser(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := ListResponse{Cases: make([]CaseResponse, 0, len(cases))}
	for _, c := range cases {
		resp.Cases = append(resp.Cases, FromCase(c))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /appeals/{caseID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Get(ctx, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCase(c))
}

// HandleAnalyze handles POST /appeals/{caseID}/analyze requests.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Analyze(ctx, caseID)
	if err != nil {
		h.logger.ErrorContext(ctx, "analysis failed",
			"request_id", requestID,
			"case_id", caseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "analysis served",
		"request_id", requestID,
		"case_id", caseID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromCase(c))
}

// HandleCheckout handles POST /appeals/{caseID}/checkout requests. The
// response carries the purchasable plans so the client can render pricing
// without a second round trip.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Checkout(ctx, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := CheckoutResponse{Case: FromCase(c)}
	for _, p := range payment.Plans() {
		resp.Plans = append(resp.Plans, PlanResponse{
			Type:        string(p.Type),
			AmountPence: p.AmountPence,
			Currency:    p.Currency,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandlePaymentCanceled handles POST /appeals/{caseID}/payment-canceled
// requests, the redirect target for abandoned checkouts.
func (h *Handler) HandlePaymentCanceled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}

	c, err := h.service.CancelPayment(ctx, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCase(c))
}

// HandleGenerateLetter handles POST /appeals/{caseID}/letter requests.
func (h *Handler) HandleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}

	c, err := h.service.GenerateLetter(ctx, caseID)
	if err != nil {
		h.logger.ErrorContext(ctx, "letter generation failed",
			"request_id", requestID,
			"case_id", caseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "letter served",
		"request_id", requestID,
		"case_id", caseID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromCase(c))
}

// HandleAuditTrail handles GET /appeals/{caseID}/events requests.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, ok := h.caseID(w, r)
	if !ok {
		return
	}

	events, err := h.service.AuditTrail(ctx, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": FromAuditEvents(events)})
}

// caseID parses the path parameter, writing the error response on failure.
func (h *Handler) caseID(w http.ResponseWriter, r *http.Request) (id.CaseID, bool) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid case id"))
		return id.CaseID{}, false
	}
	return caseID, true
}
