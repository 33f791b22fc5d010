package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_EmptyCandidates(t *testing.T) {
	ranking := Rank(evaluateFor(baseFacts("06")))

	assert.Nil(t, ranking.Primary)
	assert.Empty(t, ranking.Supporting)
	assert.False(t, ranking.HasSpecificDefences())
	require.NotEmpty(t, ranking.GeneralFallback)
	assert.Len(t, ranking.GeneralFallback, 4)
}

func TestRank_PrimaryIsStrongest(t *testing.T) {
	facts := baseFacts("06")
	facts.Paid = true
	paidUntil := ClockTime{Hour: 14, Minute: 0}
	facts.PaidUntil = &paidUntil
	facts.PassengerDropoff = true

	ranking := Rank(evaluateFor(facts))

	require.NotNil(t, ranking.Primary)
	// grace_period and payment_made are both high; grace_period declares
	// first, so it wins the tie.
	assert.Equal(t, DefenceGracePeriod, ranking.Primary.ID)
	assert.Equal(t, StrengthHigh, ranking.Primary.Strength)
}

func TestRank_StableTiebreakByDeclarationOrder(t *testing.T) {
	facts := baseFacts("12")
	facts.BlueBadge = true        // high, declared 3rd
	facts.MedicalEmergency = true // high, declared 4th

	ranking := Rank(evaluateFor(facts))

	require.NotNil(t, ranking.Primary)
	assert.Equal(t, DefenceBlueBadge, ranking.Primary.ID)
	require.Len(t, ranking.Supporting, 1)
	assert.Equal(t, DefenceMedicalEmergency, ranking.Supporting[0].ID)
}

func TestRank_SupportingCappedAtThree(t *testing.T) {
	facts := baseFacts("06")
	facts.SignageVisible = false
	facts.MarkingsVisible = false
	facts.PassengerDropoff = true
	facts.NoObservationPeriod = true
	facts.LateCouncilReply = true

	ranking := Rank(evaluateFor(facts))

	require.NotNil(t, ranking.Primary)
	assert.Len(t, ranking.Supporting, MaxSupportingDefences)
	assert.Len(t, ranking.Applicable, 5)
}

func TestRank_EndToEndScenarios(t *testing.T) {
	t.Run("paid pay-and-display ticket issued inside grace window", func(t *testing.T) {
		paidUntil := ClockTime{Hour: 14, Minute: 0}
		facts := Facts{
			IssuerType:        IssuerCouncil,
			ContraventionCode: "06",
			IssueAt:           time.Date(2025, time.June, 2, 14, 9, 0, 0, time.UTC),
			Paid:              true,
			PaidUntil:         &paidUntil,
			SignageVisible:    true,
			MarkingsVisible:   true,
		}

		ranking := Rank(evaluateFor(facts))
		require.NotNil(t, ranking.Primary)
		assert.Equal(t, DefenceGracePeriod, ranking.Primary.ID)
		assert.Equal(t, StrengthHigh, ranking.Primary.Strength)
	})

	t.Run("unpaid ticket with hidden signage leads with signage issues", func(t *testing.T) {
		facts := Facts{
			IssuerType:        IssuerCouncil,
			ContraventionCode: "06",
			IssueAt:           time.Date(2025, time.June, 2, 14, 9, 0, 0, time.UTC),
			SignageVisible:    false,
			MarkingsVisible:   true,
		}

		ranking := Rank(evaluateFor(facts))
		require.NotNil(t, ranking.Primary)
		assert.Equal(t, DefenceSignageIssues, ranking.Primary.ID)
	})
}
