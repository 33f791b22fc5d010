package account

import (
	"context"
	"log/slog"
	"time"

	"pcnappeal/internal/appeal"
	"pcnappeal/internal/payment"
	id "pcnappeal/pkg/domain"
	dErrors "pcnappeal/pkg/domain-errors"
	"pcnappeal/pkg/requestcontext"
)

// subscriptionTerm is how long an annual purchase covers.
const subscriptionTerm = 365 * 24 * time.Hour

// CaseLister supplies the user's cases for stats. Satisfied by the appeal
// case store.
type CaseLister interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]appeal.Case, error)
}

// Service owns plan bookkeeping and the activity summary.
type Service struct {
	store  Store
	cases  CaseLister
	logger *slog.Logger
}

func NewService(store Store, cases CaseLister, logger *slog.Logger) *Service {
	return &Service{store: store, cases: cases, logger: logger}
}

// ApplyPayment records a purchase against the user's account. Called by the
// payment reconciler after the case transition has committed, so failures
// here never unwind a payment.
func (s *Service) ApplyPayment(ctx context.Context, userID id.UserID, plan payment.Plan) error {
	a, err := s.store.Get(ctx, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load account")
	}

	now := requestcontext.Now(ctx)
	switch plan.Type {
	case payment.PlanAnnual:
		a.Plan = PlanSubscriber
		// Stack onto a running subscription instead of resetting it.
		base := now
		if a.PlanExpiry.After(now) {
			base = a.PlanExpiry
		}
		a.PlanExpiry = base.Add(subscriptionTerm)
	case payment.PlanSingle:
		if a.Plan == PlanFree {
			a.Plan = PlanSingleUse
		}
		a.AppealsUsed++
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown plan type %q", plan.Type)
	}
	a.UserID = userID
	a.UpdatedAt = now

	if err := s.store.Put(ctx, a); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist account")
	}
	s.logger.InfoContext(ctx, "plan applied",
		"user_id", userID,
		"plan", a.Plan,
		"appeals_used", a.AppealsUsed,
	)
	return nil
}

// Stats builds the activity summary for the requesting user.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return Stats{}, dErrors.New(dErrors.CodeUnauthorized, "missing user identity")
	}

	a, err := s.store.Get(ctx, userID)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "load account")
	}
	cases, err := s.cases.ListByUser(ctx, userID)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "list cases")
	}

	stats := Stats{
		Plan:        string(a.Plan),
		PlanExpiry:  a.PlanExpiry,
		AppealsUsed: a.AppealsUsed,
	}
	for _, c := range cases {
		stats.TotalAppeals++
		switch c.State {
		case appeal.StateCompleted:
			stats.CompletedAppeals++
		default:
			stats.PendingAppeals++
		}
	}
	return stats, nil
}
