package handler

import (
	"time"

	"pcnappeal/internal/appeal"
	"pcnappeal/internal/audit"
	"pcnappeal/internal/rules"
)

// CaseResponse is the HTTP representation of a case.
type CaseResponse struct {
	ID                    string               `json:"id"`
	State                 string               `json:"state"`
	Facts                 rules.Facts          `json:"facts"`
	Ticket                appeal.TicketDetails `json:"ticket"`
	ContraventionCategory string               `json:"contravention_category,omitempty"`
	PrimaryDefence        *rules.Defence       `json:"primary_defence,omitempty"`
	SupportingDefences    []rules.Defence      `json:"supporting_defences,omitempty"`
	GeneralDefences       []string             `json:"general_defences,omitempty"`
	LetterText            string               `json:"letter_text,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// FromCase converts a domain case to its HTTP shape.
func FromCase(c appeal.Case) CaseResponse {
	return CaseResponse{
		ID:                    c.ID.String(),
		State:                 string(c.State),
		Facts:                 c.Facts,
		Ticket:                c.Ticket,
		ContraventionCategory: c.ContraventionCategory,
		PrimaryDefence:        c.PrimaryDefence,
		SupportingDefences:    c.SupportingDefences,
		GeneralDefences:       c.GeneralDefences,
		LetterText:            c.LetterText,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

// ListResponse is the HTTP response for GET /appeals.
type ListResponse struct {
	Cases []CaseResponse `json:"cases"`
}

// CheckoutResponse is the HTTP response for POST /appeals/{id}/checkout.
type CheckoutResponse struct {
	Case  CaseResponse   `json:"case"`
	Plans []PlanResponse `json:"plans"`
}

// PlanResponse describes one purchasable plan.
type PlanResponse struct {
	Type        string `json:"type"`
	AmountPence int64  `json:"amount_pence"`
	Currency    string `json:"currency"`
}

// AuditEventResponse is one entry of the case audit trail.
type AuditEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason,omitempty"`
}

// FromAuditEvents converts the domain trail to its HTTP shape.
func FromAuditEvents(events []audit.Event) []AuditEventResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			Timestamp: e.Timestamp,
			Category:  string(e.Category),
			Action:    e.Action,
			Decision:  e.Decision,
			Reason:    e.Reason,
		})
	}
	return out
}
