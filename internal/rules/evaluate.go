package rules

import (
	"strings"
	"time"
)

// GraceWindow is the tolerance applied after paid time expires during which
// enforcement should not occur.
const GraceWindow = 10 * time.Minute

// Evaluate runs every defence template against the confirmed facts and the
// contravention rule. This is pure domain logic - no I/O, no side effects.
// Each template is evaluated independently: no defence's applicability
// depends on another's. The returned slice always has one entry per
// template, in template order, with Applicable and Reasoning computed fresh.
func Evaluate(facts Facts, rule ContraventionRule) []Defence {
	candidates := Templates()
	for i := range candidates {
		applyDefenceRule(&candidates[i], facts, rule)
	}
	return candidates
}

// applyDefenceRule sets Applicable, Reasoning, and any strength upgrade for
// a single defence candidate.
func applyDefenceRule(d *Defence, facts Facts, rule ContraventionRule) {
	d.Applicable = false
	d.Reasoning = ""

	switch d.ID {
	case DefenceLoading:
		if facts.LoadingUnloading {
			d.Applicable = true
			d.Reasoning = "User confirmed they were loading/unloading goods"
			// Stronger when the contravention itself concerns loading.
			if strings.Contains(rule.Category, "loading") {
				d.Strength = StrengthHigh
			} else {
				d.Strength = StrengthMedium
			}
		}

	case DefencePassengerDropoff:
		if facts.PassengerDropoff {
			d.Applicable = true
			d.Reasoning = "User confirmed they were picking up/dropping off passengers"
			d.Strength = StrengthMedium
		}

	case DefenceBlueBadge:
		if facts.BlueBadge {
			d.Applicable = true
			d.Reasoning = "User confirmed they hold a Blue Badge"
			d.Strength = StrengthHigh
		}

	case DefenceMedicalEmergency:
		if facts.MedicalEmergency {
			d.Applicable = true
			d.Reasoning = "User confirmed there was a medical emergency"
			d.Strength = StrengthHigh
		}

	case DefenceGracePeriod:
		if rule.GracePeriodEligible && facts.Paid && facts.PaidUntil != nil {
			if withinGracePeriod(facts.IssueAt, *facts.PaidUntil) {
				d.Applicable = true
				d.Reasoning = "Vehicle was within 10-minute grace period after paid time expired"
				d.Strength = StrengthHigh
			}
		}

	case DefenceSignageIssues:
		if !facts.SignageVisible {
			d.Applicable = true
			d.Reasoning = "User confirmed signage was not visible or clear"
			d.Strength = StrengthHigh
		}

	case DefenceBayMarkingIssues:
		if !facts.MarkingsVisible {
			d.Applicable = true
			d.Reasoning = "User confirmed road markings were not visible or clear"
			d.Strength = StrengthMedium
		}

	case DefencePaymentMade:
		if facts.Paid {
			d.Applicable = true
			d.Reasoning = "User confirmed they had paid for parking or had a permit"
			d.Strength = StrengthHigh
		}

	case DefenceObservation:
		if facts.NoObservationPeriod && rule.ObservationRequired {
			d.Applicable = true
			d.Reasoning = "User confirmed no observation period was observed by CEO"
			d.Strength = StrengthMedium
		}

	case DefenceLateCouncilReply:
		if facts.LateCouncilReply {
			d.Applicable = true
			d.Reasoning = "User confirmed council did not respond within 56 days to previous challenge"
			d.Strength = StrengthHigh
		}
	}
}

// withinGracePeriod reports whether the ticket was issued at or before the
// paid-until time plus the grace window. PaidUntil carries only a clock
// time, so it is anchored to the issue timestamp's calendar day before the
// window is added.
func withinGracePeriod(issueAt time.Time, paidUntil ClockTime) bool {
	graceEnd := paidUntil.OnDay(issueAt).Add(GraceWindow)
	return !issueAt.After(graceEnd)
}
