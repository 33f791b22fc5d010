package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcnappeal/internal/appeal"
	"pcnappeal/internal/payment"
	"pcnappeal/internal/platform/logger"
	id "pcnappeal/pkg/domain"
	"pcnappeal/pkg/requestcontext"
	"pcnappeal/pkg/testutil"
)

type fakeCases struct {
	cases []appeal.Case
}

func (f *fakeCases) ListByUser(_ context.Context, userID id.UserID) ([]appeal.Case, error) {
	var out []appeal.Case
	for _, c := range f.cases {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func singlePlan(t *testing.T) payment.Plan {
	t.Helper()
	plan, ok := payment.LookupPlan("single")
	require.True(t, ok)
	return plan
}

func annualPlan(t *testing.T) payment.Plan {
	t.Helper()
	plan, ok := payment.LookupPlan("annual")
	require.True(t, ok)
	return plan
}

func TestService_ApplyPayment(t *testing.T) {
	userID := id.NewUserID()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("single purchase marks single use and counts it", func(t *testing.T) {
		store := NewMemoryStore()
		svc := NewService(store, &fakeCases{}, logger.New())

		require.NoError(t, svc.ApplyPayment(ctx, userID, singlePlan(t)))
		require.NoError(t, svc.ApplyPayment(ctx, userID, singlePlan(t)))

		a, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, PlanSingleUse, a.Plan)
		assert.Equal(t, 2, a.AppealsUsed)
	})

	t.Run("annual purchase grants a year", func(t *testing.T) {
		store := NewMemoryStore()
		svc := NewService(store, &fakeCases{}, logger.New())

		require.NoError(t, svc.ApplyPayment(ctx, userID, annualPlan(t)))

		a, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, PlanSubscriber, a.Plan)
		assert.Equal(t, now.Add(subscriptionTerm), a.PlanExpiry)
		assert.True(t, a.ActiveSubscriber(now.Add(300*24*time.Hour)))
		assert.False(t, a.ActiveSubscriber(now.Add(400*24*time.Hour)))
	})

	t.Run("renewal stacks onto the running subscription", func(t *testing.T) {
		store := NewMemoryStore()
		svc := NewService(store, &fakeCases{}, logger.New())

		require.NoError(t, svc.ApplyPayment(ctx, userID, annualPlan(t)))
		require.NoError(t, svc.ApplyPayment(ctx, userID, annualPlan(t)))

		a, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, now.Add(2*subscriptionTerm), a.PlanExpiry)
	})

	t.Run("single purchase does not downgrade a subscriber", func(t *testing.T) {
		store := NewMemoryStore()
		svc := NewService(store, &fakeCases{}, logger.New())

		require.NoError(t, svc.ApplyPayment(ctx, userID, annualPlan(t)))
		require.NoError(t, svc.ApplyPayment(ctx, userID, singlePlan(t)))

		a, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, PlanSubscriber, a.Plan)
		assert.Equal(t, 1, a.AppealsUsed)
	})
}

func TestService_Stats(t *testing.T) {
	userID := id.NewUserID()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	ctx := testutil.Context(t, userID, now)

	cases := &fakeCases{cases: []appeal.Case{
		{UserID: userID, State: appeal.StateCompleted},
		{UserID: userID, State: appeal.StateCompleted},
		{UserID: userID, State: appeal.StateDraft},
		{UserID: userID, State: appeal.StatePaid},
		{UserID: id.NewUserID(), State: appeal.StateCompleted},
	}}

	store := NewMemoryStore()
	svc := NewService(store, cases, logger.New())
	require.NoError(t, svc.ApplyPayment(ctx, userID, singlePlan(t)))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalAppeals)
	assert.Equal(t, 2, stats.CompletedAppeals)
	assert.Equal(t, 2, stats.PendingAppeals)
	assert.Equal(t, string(PlanSingleUse), stats.Plan)
	assert.Equal(t, 1, stats.AppealsUsed)
}

func TestService_StatsRequiresUser(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeCases{}, logger.New())
	_, err := svc.Stats(context.Background())
	assert.Error(t, err)
}
