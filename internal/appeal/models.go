// Package appeal owns the case lifecycle: a state machine from fact intake
// through analysis, payment, and letter generation.
package appeal

import (
	"time"

	"pcnappeal/internal/rules"
	id "pcnappeal/pkg/domain"
)

// State is the case lifecycle phase. Transitions go through the service
// only; client-supplied phase strings are never trusted.
type State string

const (
	StateDraft           State = "draft"
	StateAnalyzed        State = "analyzed"
	StateAwaitingPayment State = "awaiting_payment"
	StatePaid            State = "paid"
	StateGenerating      State = "generating"
	StateCompleted       State = "completed"
)

// legalTransitions enumerates every permitted state change. Anything not
// listed is rejected. generating → paid is the rollback edge taken when the
// letter collaborator fails, so generation can be retried without
// re-charging.
var legalTransitions = map[State][]State{
	StateDraft:           {StateAnalyzed},
	StateAnalyzed:        {StateAwaitingPayment},
	StateAwaitingPayment: {StatePaid},
	StatePaid:            {StateGenerating},
	StateGenerating:      {StateCompleted, StatePaid},
	StateCompleted:       {},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool { return s == StateCompleted }

// TicketDetails carries the on-ticket fields that feed the letter but play
// no part in defence determination.
type TicketDetails struct {
	PCNNumber         string `json:"pcn_number"`
	Authority         string `json:"authority"`
	VRM               string `json:"vrm"`
	Location          string `json:"location"`
	ContraventionText string `json:"contravention_text"`
}

// Case is the workflow's unit of work. Mutated only by the Service; the
// Version field backs the compare-and-swap at the persistence boundary so
// two writers can never interleave on one case.
type Case struct {
	ID     id.CaseID
	UserID id.UserID

	Facts  rules.Facts
	Ticket TicketDetails

	State State

	// Set when the draft → analyzed transition runs.
	ContraventionCategory string
	PrimaryDefence        *rules.Defence
	SupportingDefences    []rules.Defence
	GeneralDefences       []string

	// PaymentRef is set by exactly one successful payment confirmation.
	PaymentRef string
	// LetterText is non-empty only in StateCompleted.
	LetterText string

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

// Analyzed reports whether defence analysis has run for this case.
func (c Case) Analyzed() bool { return c.State != StateDraft }

// PaymentApplied reports whether a payment confirmation has ever landed.
func (c Case) PaymentApplied() bool {
	switch c.State {
	case StatePaid, StateGenerating, StateCompleted:
		return true
	default:
		return false
	}
}
