package appeal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pcnappeal/internal/appeal/metrics"
	"pcnappeal/internal/audit"
	"pcnappeal/internal/rules"
	id "pcnappeal/pkg/domain"
	dErrors "pcnappeal/pkg/domain-errors"
	"pcnappeal/pkg/requestcontext"
)

// LetterGenerator produces the appeal letter text for an analyzed, paid
// case. Implemented by the letter service client; faked in tests.
type LetterGenerator interface {
	Generate(ctx context.Context, c Case) (string, error)
}

// casConflictRetries bounds how often a state transition is retried after
// losing an optimistic-lock race before giving up with a conflict.
const casConflictRetries = 3

// Service drives the case lifecycle. All state transitions go through here;
// handlers and the payment reconciler never write cases directly.
type Service struct {
	store   CaseStore
	letters LetterGenerator
	auditor *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func NewService(store CaseStore, letters LetterGenerator, opts ...Option) *Service {
	s := &Service{
		store:   store,
		letters: letters,
		logger:  slog.Default(),
		tracer:  otel.Tracer("pcnappeal/appeal"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries everything a new case needs at intake.
type CreateInput struct {
	Facts  rules.Facts
	Ticket TicketDetails
}

// Create opens a new draft case for the requesting user. Facts may be
// incomplete at this point; completeness is enforced at analysis time.
func (s *Service) Create(ctx context.Context, in CreateInput) (Case, error) {
	ctx, span := s.tracer.Start(ctx, "appeal.Create")
	defer span.End()

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return Case{}, dErrors.New(dErrors.CodeUnauthorized, "missing user identity")
	}
	if in.Facts.IssuerType != "" && in.Facts.IssuerType != rules.IssuerCouncil && in.Facts.IssuerType != rules.IssuerPrivate {
		return Case{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown issuer type %q", in.Facts.IssuerType)
	}

	now := requestcontext.Now(ctx)
	c := Case{
		ID:        id.NewCaseID(),
		UserID:    userID,
		Facts:     in.Facts,
		Ticket:    in.Ticket,
		State:     StateDraft,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return Case{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist case")
	}
	span.SetAttributes(attribute.String("case_id", c.ID.String()))

	s.metrics.IncCasesCreated()
	s.audit(ctx, c, audit.EventCaseCreated, "created", "")
	s.logger.InfoContext(ctx, "case created",
		"case_id", c.ID,
		"user_id", userID,
		"contravention_code", in.Facts.ContraventionCode,
	)
	return c, nil
}

// Get fetches a case, enforcing ownership.
func (s *Service) Get(ctx context.Context, caseID id.CaseID) (Case, error) {
	c, err := s.load(ctx, caseID)
	if err != nil {
		return Case{}, err
	}
	return c, nil
}

// ListByUser returns the requesting user's cases, newest first.
func (s *Service) ListByUser(ctx context.Context) ([]Case, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user identity")
	}
	cases, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list cases")
	}
	return cases, nil
}

// Analyze runs the defence determination for a draft case and advances it
// to analyzed. Repeating the call on an already-analyzed case is a
// conflict, not a re-run: analysis results are priced, so they are computed
// once per case.
func (s *Service) Analyze(ctx context.Context, caseID id.CaseID) (Case, error) {
	ctx, span := s.tracer.Start(ctx, "appeal.Analyze")
	defer span.End()
	started := time.Now()

	c, err := s.load(ctx, caseID)
	if err != nil {
		return Case{}, err
	}
	if c.State != StateDraft {
		s.metrics.IncAnalysisRefused()
		return Case{}, dErrors.Newf(dErrors.CodeConflict, "case is %s, analysis runs on draft cases only", c.State)
	}
	if !c.Facts.Complete() {
		s.metrics.IncAnalysisRefused()
		return Case{}, dErrors.New(dErrors.CodeInvalidInput, "facts are incomplete: issuer, contravention code and issue time are required")
	}

	rule := rules.LookupContravention(c.Facts.ContraventionCode)
	ranking := rules.Rank(rules.Evaluate(c.Facts, rule))

	c.ContraventionCategory = rule.Category
	c.PrimaryDefence = ranking.Primary
	c.SupportingDefences = ranking.Supporting
	c.GeneralDefences = ranking.GeneralFallback
	c.State = StateAnalyzed
	c.UpdatedAt = requestcontext.Now(ctx)

	updated, err := s.update(ctx, c)
	if err != nil {
		return Case{}, err
	}

	if !ranking.HasSpecificDefences() {
		s.metrics.IncFallbackRankings()
	}
	s.metrics.IncCasesAnalyzed()
	s.metrics.ObserveAnalysisDuration(time.Since(started).Seconds())
	s.audit(ctx, updated, audit.EventCaseAnalyzed, "analyzed", analysisReason(ranking))
	s.logger.InfoContext(ctx, "case analyzed",
		"case_id", updated.ID,
		"contravention_code", updated.Facts.ContraventionCode,
		"category", updated.ContraventionCategory,
		"specific_defences", len(ranking.Applicable),
	)
	return updated, nil
}

func analysisReason(r rules.Ranking) string {
	if r.Primary != nil {
		return "primary defence " + r.Primary.ID
	}
	return "general fallback only"
}

// Checkout moves an analyzed case to awaiting_payment so an incoming
// payment confirmation can land on it. Revisiting checkout on a case
// already awaiting payment is a no-op, not a conflict: abandoned checkouts
// are restarted this way.
func (s *Service) Checkout(ctx context.Context, caseID id.CaseID) (Case, error) {
	ctx, span := s.tracer.Start(ctx, "appeal.Checkout")
	defer span.End()

	c, err := s.load(ctx, caseID)
	if err != nil {
		return Case{}, err
	}
	if c.State == StateAwaitingPayment {
		return c, nil
	}
	if c.State != StateAnalyzed {
		return Case{}, dErrors.Newf(dErrors.CodeConflict, "case is %s, checkout requires an analyzed case", c.State)
	}

	c.State = StateAwaitingPayment
	c.UpdatedAt = requestcontext.Now(ctx)
	updated, err := s.update(ctx, c)
	if err != nil {
		return Case{}, err
	}
	s.logger.InfoContext(ctx, "checkout opened", "case_id", updated.ID)
	return updated, nil
}

// ConfirmPayment applies a confirmed payment to the case. Called by the
// payment reconciler only; clients never reach this directly. The call is
// idempotent: a case that already absorbed a payment reports success without
// a second transition.
func (s *Service) ConfirmPayment(ctx context.Context, caseID id.CaseID, paymentRef string) (Case, error) {
	ctx, span := s.tracer.Start(ctx, "appeal.ConfirmPayment")
	defer span.End()

	for attempt := 0; ; attempt++ {
		c, err := s.loadAny(ctx, caseID)
		if err != nil {
			return Case{}, err
		}

		if c.PaymentApplied() {
			s.logger.InfoContext(ctx, "payment already applied, confirming as no-op",
				"case_id", c.ID,
				"state", c.State,
				"payment_ref", paymentRef,
			)
			return c, nil
		}
		if c.State != StateAwaitingPayment {
			s.audit(ctx, c, audit.EventPaymentRejected, "rejected", "case not awaiting payment")
			return Case{}, dErrors.Newf(dErrors.CodeConflict, "case is %s, payment applies to awaiting_payment cases only", c.State)
		}

		c.State = StatePaid
		c.PaymentRef = paymentRef
		c.UpdatedAt = requestcontext.Now(ctx)

		updated, err := s.store.Update(ctx, c, c.Version)
		if errors.Is(err, ErrVersionConflict) {
			s.metrics.IncVersionConflicts()
			if attempt < casConflictRetries {
				continue
			}
			return Case{}, dErrors.Wrap(err, dErrors.CodeConflict, "case changed concurrently")
		}
		if err != nil {
			return Case{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist payment")
		}

		s.metrics.IncPaymentsConfirmed()
		s.audit(ctx, updated, audit.EventPaymentConfirmed, "paid", "payment "+paymentRef)
		s.logger.InfoContext(ctx, "payment confirmed",
			"case_id", updated.ID,
			"payment_ref", paymentRef,
		)
		return updated, nil
	}
}

// CancelPayment records an abandoned checkout. The case never left
// awaiting_payment, so this is a no-op transition kept for the audit trail
// and the client redirect.
func (s *Service) CancelPayment(ctx context.Context, caseID id.CaseID) (Case, error) {
	c, err := s.load(ctx, caseID)
	if err != nil {
		return Case{}, err
	}
	if c.State != StateAwaitingPayment {
		return Case{}, dErrors.Newf(dErrors.CodeConflict, "case is %s, nothing to cancel", c.State)
	}
	s.logger.InfoContext(ctx, "checkout canceled", "case_id", c.ID)
	return c, nil
}

// GenerateLetter produces the appeal letter for a paid case. The paid →
// generating CAS guarantees exactly one generation runs per confirmed
// payment even under concurrent requests; the loser of the race sees a
// conflict. A failed generation rolls the case back to paid so the caller
// can retry without paying again.
func (s *Service) GenerateLetter(ctx context.Context, caseID id.CaseID) (Case, error) {
	ctx, span := s.tracer.Start(ctx, "appeal.GenerateLetter")
	defer span.End()
	started := time.Now()

	c, err := s.load(ctx, caseID)
	if err != nil {
		return Case{}, err
	}
	if c.State == StateCompleted {
		return Case{}, dErrors.New(dErrors.CodeConflict, "letter already generated for this case")
	}
	if c.State != StatePaid {
		return Case{}, dErrors.Newf(dErrors.CodeConflict, "case is %s, letter generation requires a paid case", c.State)
	}

	c.State = StateGenerating
	c.UpdatedAt = requestcontext.Now(ctx)
	generating, err := s.store.Update(ctx, c, c.Version)
	if errors.Is(err, ErrVersionConflict) {
		s.metrics.IncVersionConflicts()
		return Case{}, dErrors.Wrap(err, dErrors.CodeConflict, "letter generation already in progress")
	}
	if err != nil {
		return Case{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist generating state")
	}

	text, genErr := s.letters.Generate(ctx, generating)
	if genErr != nil || text == "" {
		if genErr == nil {
			genErr = errors.New("letter service returned empty letter")
		}
		s.rollbackGeneration(ctx, generating, genErr)
		s.metrics.IncLetterFailures()
		return Case{}, dErrors.Wrap(genErr, dErrors.CodeUnavailable, "letter generation failed, case remains paid and can be retried")
	}

	generating.State = StateCompleted
	generating.LetterText = text
	generating.UpdatedAt = requestcontext.Now(ctx)
	completed, err := s.store.Update(ctx, generating, generating.Version)
	if err != nil {
		// The letter exists but the completion write failed. Roll back so a
		// retry can regenerate; generation is idempotent from paid.
		s.rollbackGeneration(ctx, generating, err)
		s.metrics.IncLetterFailures()
		return Case{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist letter failed, case remains paid and can be retried")
	}

	s.metrics.IncLettersGenerated()
	s.metrics.ObserveGenerationDuration(time.Since(started).Seconds())
	s.audit(ctx, completed, audit.EventLetterGenerated, "completed", "")
	s.logger.InfoContext(ctx, "letter generated",
		"case_id", completed.ID,
		"letter_bytes", len(text),
	)
	return completed, nil
}

// AuditTrail returns the audit events for a case the requesting user owns.
func (s *Service) AuditTrail(ctx context.Context, caseID id.CaseID) ([]audit.Event, error) {
	if _, err := s.load(ctx, caseID); err != nil {
		return nil, err
	}
	if s.auditor == nil {
		return nil, nil
	}
	events, err := s.auditor.List(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load audit trail")
	}
	return events, nil
}

// rollbackGeneration returns a generating case to paid after a failed
// attempt. Rollback failure leaves the case stuck in generating; that is
// logged loudly for operator action rather than papered over.
func (s *Service) rollbackGeneration(ctx context.Context, c Case, cause error) {
	c.State = StatePaid
	c.LetterText = ""
	c.UpdatedAt = requestcontext.Now(ctx)
	if _, err := s.store.Update(ctx, c, c.Version); err != nil {
		s.logger.ErrorContext(ctx, "rollback to paid failed, case stuck in generating",
			"case_id", c.ID,
			"generation_error", cause,
			"rollback_error", err,
		)
		return
	}
	s.audit(ctx, c, audit.EventLetterFailed, "rolled_back", cause.Error())
	s.logger.ErrorContext(ctx, "letter generation failed, case rolled back to paid",
		"case_id", c.ID,
		"error", cause,
	)
}

// load fetches a case and enforces that the context user owns it. Ownership
// failures report not_found so case IDs cannot be probed.
func (s *Service) load(ctx context.Context, caseID id.CaseID) (Case, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return Case{}, dErrors.New(dErrors.CodeUnauthorized, "missing user identity")
	}
	c, err := s.loadAny(ctx, caseID)
	if err != nil {
		return Case{}, err
	}
	if c.UserID != userID {
		return Case{}, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	return c, nil
}

// loadAny fetches a case without an ownership check. Used by the payment
// reconciler, which acts on webhook metadata rather than a user session.
func (s *Service) loadAny(ctx context.Context, caseID id.CaseID) (Case, error) {
	c, err := s.store.Get(ctx, caseID)
	if errors.Is(err, ErrNotFound) {
		return Case{}, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	if err != nil {
		return Case{}, dErrors.Wrap(err, dErrors.CodeInternal, "load case")
	}
	return c, nil
}

// update persists a case at its current version, translating store errors.
func (s *Service) update(ctx context.Context, c Case) (Case, error) {
	updated, err := s.store.Update(ctx, c, c.Version)
	if errors.Is(err, ErrVersionConflict) {
		s.metrics.IncVersionConflicts()
		return Case{}, dErrors.Wrap(err, dErrors.CodeConflict, "case changed concurrently")
	}
	if err != nil {
		return Case{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist case")
	}
	return updated, nil
}

func (s *Service) audit(ctx context.Context, c Case, action audit.AuditEvent, decision, reason string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		CaseID:    c.ID,
		UserID:    c.UserID,
		Action:    string(action),
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
}
