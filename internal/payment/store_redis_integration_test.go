//go:build integration

package payment_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"pcnappeal/internal/payment"
	"pcnappeal/pkg/testutil/containers"
)

type RedisIdempotencySuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *payment.RedisIdempotencyStore
}

func TestRedisIdempotencySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisIdempotencySuite))
}

func (s *RedisIdempotencySuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = payment.NewRedisIdempotencyStore(s.redis.Client)
}

func (s *RedisIdempotencySuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisIdempotencySuite) TestClaimOnce() {
	ctx := context.Background()

	claimed, err := s.store.Claim(ctx, "evt_1")
	s.Require().NoError(err)
	s.True(claimed)

	claimed, err = s.store.Claim(ctx, "evt_1")
	s.Require().NoError(err)
	s.False(claimed)
}

func (s *RedisIdempotencySuite) TestReleaseReopensTheClaim() {
	ctx := context.Background()

	claimed, err := s.store.Claim(ctx, "evt_1")
	s.Require().NoError(err)
	s.Require().True(claimed)

	s.Require().NoError(s.store.Release(ctx, "evt_1"))

	claimed, err = s.store.Claim(ctx, "evt_1")
	s.Require().NoError(err)
	s.True(claimed)
}

func (s *RedisIdempotencySuite) TestConcurrentClaimsAdmitOne() {
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := s.store.Claim(ctx, "evt_contended")
			s.Require().NoError(err)
			if claimed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
}

func (s *RedisIdempotencySuite) TestDistinctEventsAreIndependent() {
	ctx := context.Background()

	for _, eventID := range []string{"evt_1", "evt_2", "evt_3"} {
		claimed, err := s.store.Claim(ctx, eventID)
		s.Require().NoError(err)
		s.True(claimed)
	}
}
