package payment

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"pcnappeal/internal/audit"
	id "pcnappeal/pkg/domain"
	dErrors "pcnappeal/pkg/domain-errors"
	"pcnappeal/pkg/requestcontext"
)

// CaseConfirmer applies a confirmed payment to a case. Implemented by the
// appeal service; the returned user ID feeds account bookkeeping.
type CaseConfirmer interface {
	ConfirmCasePayment(ctx context.Context, caseID id.CaseID, paymentRef string) (id.UserID, error)
}

// PlanApplier records what a user bought. Implemented by the account
// service.
type PlanApplier interface {
	ApplyPayment(ctx context.Context, userID id.UserID, plan Plan) error
}

// Reconciler turns verified webhook events into case transitions. The
// pipeline per event is claim, confirm, apply plan. A claim that cannot be
// followed through is released so the provider's retry gets another chance.
type Reconciler struct {
	secret    string
	tolerance time.Duration
	events    IdempotencyStore
	confirmer CaseConfirmer
	accounts  PlanApplier
	auditor   *audit.Publisher
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
}

// ReconcilerOption configures the Reconciler.
type ReconcilerOption func(*Reconciler)

func WithLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.logger = logger }
}

func WithMetrics(m *Metrics) ReconcilerOption {
	return func(r *Reconciler) { r.metrics = m }
}

func WithAuditor(p *audit.Publisher) ReconcilerOption {
	return func(r *Reconciler) { r.auditor = p }
}

func WithPlanApplier(accounts PlanApplier) ReconcilerOption {
	return func(r *Reconciler) { r.accounts = accounts }
}

// WithTolerance overrides the signature timestamp tolerance.
func WithTolerance(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) { r.tolerance = d }
}

func NewReconciler(secret string, events IdempotencyStore, confirmer CaseConfirmer, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		secret:    secret,
		tolerance: DefaultSignatureTolerance,
		events:    events,
		confirmer: confirmer,
		logger:    slog.Default(),
		tracer:    otel.Tracer("pcnappeal/payment"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleWebhook processes one raw webhook delivery. The error contract
// matters to the provider's retry loop: signature failures and transient
// confirm failures return errors so the delivery is retried; malformed or
// irrelevant events return nil so the provider stops resending something
// that can never succeed.
func (r *Reconciler) HandleWebhook(ctx context.Context, body []byte, signature string, receivedAt time.Time) error {
	ctx, span := r.tracer.Start(ctx, "payment.HandleWebhook")
	defer span.End()

	if err := VerifySignature(signature, body, r.secret, receivedAt, r.tolerance); err != nil {
		r.metrics.IncSignatureFailures()
		r.logger.WarnContext(ctx, "webhook signature rejected", "error", err)
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid webhook signature")
	}

	event, err := ParseWebhookEvent(body)
	if err != nil {
		// Signed but unparseable. Retrying cannot help, acknowledge it.
		r.metrics.IncDiscarded("malformed")
		r.logger.ErrorContext(ctx, "webhook body unparseable", "error", err)
		return nil
	}
	if !event.Actionable() {
		r.metrics.IncDiscarded("ignored_type")
		r.logger.InfoContext(ctx, "webhook event ignored", "event_id", event.ID, "type", event.Type)
		return nil
	}
	if event.ID == "" {
		r.metrics.IncDiscarded("missing_id")
		r.logger.ErrorContext(ctx, "webhook event has no id, cannot deduplicate", "type", event.Type)
		return nil
	}

	caseID, plan, ok := r.extract(ctx, event)
	if !ok {
		return nil
	}

	return r.reconcile(ctx, event, caseID, plan)
}

// extract pulls the case linkage out of event metadata. Events without a
// usable case ID or plan type are logged and discarded; there is no case to
// transition and no amount of retrying changes the metadata.
func (r *Reconciler) extract(ctx context.Context, event WebhookEvent) (id.CaseID, Plan, bool) {
	meta := event.Data.Object.Metadata

	rawCaseID, ok := meta[MetadataCaseID]
	if !ok || rawCaseID == "" {
		r.metrics.IncDiscarded("missing_case_id")
		r.logger.ErrorContext(ctx, "webhook metadata missing case id",
			"event_id", event.ID,
			"session_id", event.Data.Object.ID,
		)
		return id.CaseID{}, Plan{}, false
	}
	caseID, err := id.ParseCaseID(rawCaseID)
	if err != nil {
		r.metrics.IncDiscarded("bad_case_id")
		r.logger.ErrorContext(ctx, "webhook metadata case id invalid",
			"event_id", event.ID,
			"case_id", rawCaseID,
		)
		return id.CaseID{}, Plan{}, false
	}

	plan, ok := LookupPlan(meta[MetadataPlanType])
	if !ok {
		r.metrics.IncDiscarded("unknown_plan")
		r.logger.ErrorContext(ctx, "webhook metadata plan type unknown",
			"event_id", event.ID,
			"plan_type", meta[MetadataPlanType],
		)
		return id.CaseID{}, Plan{}, false
	}
	return caseID, plan, true
}

func (r *Reconciler) reconcile(ctx context.Context, event WebhookEvent, caseID id.CaseID, plan Plan) error {
	claimed, err := r.events.Claim(ctx, event.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "idempotency store unavailable")
	}
	if !claimed {
		r.metrics.IncDuplicates()
		r.audit(ctx, caseID, id.UserID{}, audit.EventPaymentDuplicate, "ignored", "event "+event.ID+" already processed")
		r.logger.InfoContext(ctx, "duplicate webhook delivery ignored",
			"event_id", event.ID,
			"case_id", caseID,
		)
		return nil
	}

	userID, err := r.confirmer.ConfirmCasePayment(ctx, caseID, event.Data.Object.ID)
	if err != nil {
		// Release the claim so the provider's retry can land once the
		// underlying condition clears.
		if relErr := r.events.Release(ctx, event.ID); relErr != nil {
			r.logger.ErrorContext(ctx, "idempotency release failed, event will need manual replay",
				"event_id", event.ID,
				"error", relErr,
			)
		}
		if dErrors.HasCode(err, dErrors.CodeConflict) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			r.metrics.IncRejected()
			r.audit(ctx, caseID, id.UserID{}, audit.EventPaymentRejected, "rejected", err.Error())
			r.logger.ErrorContext(ctx, "payment rejected by case state",
				"event_id", event.ID,
				"case_id", caseID,
				"error", err,
			)
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "payment confirmation failed")
	}

	if r.accounts != nil {
		if err := r.accounts.ApplyPayment(ctx, userID, plan); err != nil {
			// The case is paid; plan bookkeeping must not unwind that.
			r.logger.ErrorContext(ctx, "plan bookkeeping failed after confirmed payment",
				"event_id", event.ID,
				"case_id", caseID,
				"user_id", userID,
				"plan_type", plan.Type,
				"error", err,
			)
		}
	}

	r.metrics.IncConfirmed(string(plan.Type))
	r.logger.InfoContext(ctx, "payment reconciled",
		"event_id", event.ID,
		"case_id", caseID,
		"user_id", userID,
		"plan_type", plan.Type,
		"amount_pence", event.Data.Object.AmountTotal,
	)
	return nil
}

func (r *Reconciler) audit(ctx context.Context, caseID id.CaseID, userID id.UserID, action audit.AuditEvent, decision, reason string) {
	if r.auditor == nil {
		return
	}
	r.auditor.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		CaseID:    caseID,
		UserID:    userID,
		Action:    string(action),
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
}
