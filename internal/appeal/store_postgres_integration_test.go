//go:build integration

package appeal_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pcnappeal/internal/appeal"
	"pcnappeal/internal/rules"
	id "pcnappeal/pkg/domain"
	"pcnappeal/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *appeal.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = appeal.NewPostgresStore(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "appeal_cases"))
}

func (s *PostgresStoreSuite) newCase(userID id.UserID) appeal.Case {
	now := time.Now().UTC().Truncate(time.Microsecond)
	paidUntil := rules.ClockTime{Hour: 14, Minute: 0}
	return appeal.Case{
		ID:     id.NewCaseID(),
		UserID: userID,
		Facts: rules.Facts{
			IssuerType:        rules.IssuerCouncil,
			ContraventionCode: "06",
			IssueAt:           now,
			Paid:              true,
			PaidUntil:         &paidUntil,
			SignageVisible:    true,
			MarkingsVisible:   true,
		},
		Ticket:    appeal.TicketDetails{PCNNumber: "AB12345678", Authority: "Camden"},
		State:     appeal.StateDraft,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	c := s.newCase(id.NewUserID())
	primary := rules.Defence{ID: rules.DefenceGracePeriod, Strength: rules.StrengthHigh, Applicable: true, Evidence: []string{"payment_receipt"}}
	c.PrimaryDefence = &primary
	c.GeneralDefences = []string{"check the signage"}

	s.Require().NoError(s.store.Create(ctx, c))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
	s.Equal(c.UserID, got.UserID)
	s.Equal(appeal.StateDraft, got.State)
	s.Require().NotNil(got.Facts.PaidUntil)
	s.Equal(14, got.Facts.PaidUntil.Hour)
	s.Require().NotNil(got.PrimaryDefence)
	s.Equal(rules.DefenceGracePeriod, got.PrimaryDefence.ID)
	s.Equal([]string{"check the signage"}, got.GeneralDefences)
	s.EqualValues(1, got.Version)
}

func (s *PostgresStoreSuite) TestGetUnknownIsNotFound() {
	_, err := s.store.Get(context.Background(), id.NewCaseID())
	s.ErrorIs(err, appeal.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateEnforcesVersion() {
	ctx := context.Background()
	c := s.newCase(id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, c))

	c.State = appeal.StateAnalyzed
	updated, err := s.store.Update(ctx, c, 1)
	s.Require().NoError(err)
	s.EqualValues(2, updated.Version)

	c.State = appeal.StateAwaitingPayment
	_, err = s.store.Update(ctx, c, 1)
	s.ErrorIs(err, appeal.ErrVersionConflict)

	_, err = s.store.Update(ctx, s.newCase(id.NewUserID()), 1)
	s.ErrorIs(err, appeal.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentCASAdmitsOneWriter() {
	ctx := context.Background()
	c := s.newCase(id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, c))

	const goroutines = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			attempt := c
			attempt.State = appeal.StateAnalyzed
			if _, err := s.store.Update(ctx, attempt, 1); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
	final, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.EqualValues(2, final.Version)
}

func (s *PostgresStoreSuite) TestListByUserNewestFirst() {
	ctx := context.Background()
	userID := id.NewUserID()

	older := s.newCase(userID)
	newer := s.newCase(userID)
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))
	s.Require().NoError(s.store.Create(ctx, s.newCase(id.NewUserID())))

	cases, err := s.store.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(cases, 2)
	s.Equal(newer.ID, cases[0].ID)
	s.Equal(older.ID, cases[1].ID)
}
