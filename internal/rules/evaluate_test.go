package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseFacts returns facts that trigger no defence: signage and markings
// visible, nothing claimed, no payment.
func baseFacts(code string) Facts {
	return Facts{
		IssuerType:        IssuerCouncil,
		ContraventionCode: code,
		IssueAt:           time.Date(2025, time.March, 3, 14, 9, 0, 0, time.UTC),
		SignageVisible:    true,
		MarkingsVisible:   true,
	}
}

func findDefence(t *testing.T, candidates []Defence, id string) Defence {
	t.Helper()
	for _, d := range candidates {
		if d.ID == id {
			return d
		}
	}
	t.Fatalf("defence %q not in candidate list", id)
	return Defence{}
}

func evaluateFor(facts Facts) []Defence {
	return Evaluate(facts, LookupContravention(facts.ContraventionCode))
}

func TestEvaluate_OneCandidatePerTemplate(t *testing.T) {
	candidates := evaluateFor(baseFacts("06"))
	require.Len(t, candidates, 10)
	for _, d := range candidates {
		assert.False(t, d.Applicable, "defence %s should not apply to neutral facts", d.ID)
		assert.Empty(t, d.Reasoning)
	}
}

func TestEvaluate_Loading(t *testing.T) {
	t.Run("applies when flag set, medium strength by default", func(t *testing.T) {
		facts := baseFacts("01")
		facts.LoadingUnloading = true

		d := findDefence(t, evaluateFor(facts), DefenceLoading)
		assert.True(t, d.Applicable)
		assert.Equal(t, StrengthMedium, d.Strength)
	})

	t.Run("upgraded to high on loading-restriction contraventions", func(t *testing.T) {
		facts := baseFacts("25")
		facts.LoadingUnloading = true

		d := findDefence(t, evaluateFor(facts), DefenceLoading)
		assert.True(t, d.Applicable)
		assert.Equal(t, StrengthHigh, d.Strength)
	})
}

func TestEvaluate_GracePeriod(t *testing.T) {
	paidUntil := ClockTime{Hour: 14, Minute: 0}

	gracefulFacts := func(issue time.Time) Facts {
		facts := baseFacts("06")
		facts.IssueAt = issue
		facts.Paid = true
		facts.PaidUntil = &paidUntil
		return facts
	}

	t.Run("issue 9 minutes after paid-until is within grace", func(t *testing.T) {
		issue := time.Date(2025, time.March, 3, 14, 9, 0, 0, time.UTC)
		d := findDefence(t, evaluateFor(gracefulFacts(issue)), DefenceGracePeriod)
		assert.True(t, d.Applicable)
		assert.Equal(t, StrengthHigh, d.Strength)
	})

	t.Run("issue exactly at the grace boundary is within grace", func(t *testing.T) {
		issue := time.Date(2025, time.March, 3, 14, 10, 0, 0, time.UTC)
		d := findDefence(t, evaluateFor(gracefulFacts(issue)), DefenceGracePeriod)
		assert.True(t, d.Applicable)
	})

	t.Run("issue 11 minutes after paid-until is outside grace", func(t *testing.T) {
		issue := time.Date(2025, time.March, 3, 14, 11, 0, 0, time.UTC)
		d := findDefence(t, evaluateFor(gracefulFacts(issue)), DefenceGracePeriod)
		assert.False(t, d.Applicable)
	})

	t.Run("paid-until clock time anchors to the issue date", func(t *testing.T) {
		// Same clock reading on a different day must behave identically.
		issue := time.Date(2026, time.November, 20, 14, 9, 0, 0, time.UTC)
		d := findDefence(t, evaluateFor(gracefulFacts(issue)), DefenceGracePeriod)
		assert.True(t, d.Applicable)
	})

	t.Run("not grace-eligible code never applies", func(t *testing.T) {
		facts := gracefulFacts(time.Date(2025, time.March, 3, 14, 5, 0, 0, time.UTC))
		facts.ContraventionCode = "01"
		d := findDefence(t, evaluateFor(facts), DefenceGracePeriod)
		assert.False(t, d.Applicable)
	})

	t.Run("requires payment and a paid-until time", func(t *testing.T) {
		unpaid := baseFacts("06")
		d := findDefence(t, evaluateFor(unpaid), DefenceGracePeriod)
		assert.False(t, d.Applicable)

		noTime := baseFacts("06")
		noTime.Paid = true
		d = findDefence(t, evaluateFor(noTime), DefenceGracePeriod)
		assert.False(t, d.Applicable)
	})
}

func TestEvaluate_VisibilityDefences(t *testing.T) {
	t.Run("signage not visible", func(t *testing.T) {
		facts := baseFacts("06")
		facts.SignageVisible = false
		d := findDefence(t, evaluateFor(facts), DefenceSignageIssues)
		assert.True(t, d.Applicable)
		assert.Equal(t, StrengthHigh, d.Strength)
	})

	t.Run("markings not visible", func(t *testing.T) {
		facts := baseFacts("24")
		facts.MarkingsVisible = false
		d := findDefence(t, evaluateFor(facts), DefenceBayMarkingIssues)
		assert.True(t, d.Applicable)
		assert.Equal(t, StrengthMedium, d.Strength)
	})
}

func TestEvaluate_ObservationPeriod(t *testing.T) {
	t.Run("applies when claimed and code requires observation", func(t *testing.T) {
		facts := baseFacts("06")
		facts.NoObservationPeriod = true
		d := findDefence(t, evaluateFor(facts), DefenceObservation)
		assert.True(t, d.Applicable)
	})

	t.Run("claim alone is not enough without the requirement", func(t *testing.T) {
		facts := baseFacts("06")
		facts.NoObservationPeriod = true
		rule := ContraventionRule{Category: "pay_display", ObservationRequired: false}
		d := findDefence(t, Evaluate(facts, rule), DefenceObservation)
		assert.False(t, d.Applicable)
	})
}

func TestEvaluate_RemainingFlags(t *testing.T) {
	facts := baseFacts("12")
	facts.PassengerDropoff = true
	facts.BlueBadge = true
	facts.MedicalEmergency = true
	facts.LateCouncilReply = true
	facts.Paid = true

	candidates := evaluateFor(facts)
	assert.True(t, findDefence(t, candidates, DefencePassengerDropoff).Applicable)
	assert.True(t, findDefence(t, candidates, DefenceBlueBadge).Applicable)
	assert.True(t, findDefence(t, candidates, DefenceMedicalEmergency).Applicable)
	assert.True(t, findDefence(t, candidates, DefenceLateCouncilReply).Applicable)
	assert.True(t, findDefence(t, candidates, DefencePaymentMade).Applicable)
}

func TestParseClockTime(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ct, err := ParseClockTime("14:00")
		require.NoError(t, err)
		assert.Equal(t, ClockTime{Hour: 14, Minute: 0}, ct)
		assert.Equal(t, "14:00", ct.String())
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"", "25:00", "14:60", "noon", "-1:30"} {
			_, err := ParseClockTime(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestFactsComplete(t *testing.T) {
	complete := baseFacts("06")
	assert.True(t, complete.Complete())

	missingCode := complete
	missingCode.ContraventionCode = ""
	assert.False(t, missingCode.Complete())

	missingIssue := complete
	missingIssue.IssueAt = time.Time{}
	assert.False(t, missingIssue.Complete())

	badIssuer := complete
	badIssuer.IssuerType = "dvla"
	assert.False(t, badIssuer.Complete())
}
