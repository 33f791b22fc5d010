package handler

import (
	"time"

	"pcnappeal/internal/appeal"
	"pcnappeal/internal/rules"
	dErrors "pcnappeal/pkg/domain-errors"
)

// CreateCaseRequest is the HTTP request for POST /appeals. Fact fields use
// pointers where absence and false differ for the defence rules.
type CreateCaseRequest struct {
	IssuerType        string `json:"issuer_type"`
	ContraventionCode string `json:"contravention_code"`
	IssueAt           string `json:"issue_at"`

	Paid          bool   `json:"paid"`
	PaidUntil     string `json:"paid_until,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	PermitType    string `json:"permit_type,omitempty"`

	LoadingUnloading    bool  `json:"loading_unloading"`
	PassengerDropoff    bool  `json:"passenger_dropoff"`
	BlueBadge           bool  `json:"blue_badge"`
	MedicalEmergency    bool  `json:"medical_emergency"`
	SignageVisible      *bool `json:"signage_visible,omitempty"`
	MarkingsVisible     *bool `json:"markings_visible,omitempty"`
	NoObservationPeriod bool  `json:"no_observation_period"`
	LateCouncilReply    bool  `json:"late_council_reply"`

	PCNNumber         string `json:"pcn_number,omitempty"`
	Authority         string `json:"authority,omitempty"`
	VRM               string `json:"vrm,omitempty"`
	Location          string `json:"location,omitempty"`
	ContraventionText string `json:"contravention_text,omitempty"`
}

// ToInput converts the request into the service's intake shape. Signage and
// markings default to visible when omitted so a missing answer never
// manufactures a defence.
func (r CreateCaseRequest) ToInput() (appeal.CreateInput, error) {
	facts := rules.Facts{
		IssuerType:          rules.IssuerType(r.IssuerType),
		ContraventionCode:   r.ContraventionCode,
		Paid:                r.Paid,
		PaymentMethod:       r.PaymentMethod,
		PermitType:          r.PermitType,
		LoadingUnloading:    r.LoadingUnloading,
		PassengerDropoff:    r.PassengerDropoff,
		BlueBadge:           r.BlueBadge,
		MedicalEmergency:    r.MedicalEmergency,
		SignageVisible:      true,
		MarkingsVisible:     true,
		NoObservationPeriod: r.NoObservationPeriod,
		LateCouncilReply:    r.LateCouncilReply,
	}
	if r.SignageVisible != nil {
		facts.SignageVisible = *r.SignageVisible
	}
	if r.MarkingsVisible != nil {
		facts.MarkingsVisible = *r.MarkingsVisible
	}

	if r.IssueAt != "" {
		issueAt, err := time.Parse(time.RFC3339, r.IssueAt)
		if err != nil {
			return appeal.CreateInput{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "issue_at must be RFC 3339")
		}
		facts.IssueAt = issueAt
	}
	if r.PaidUntil != "" {
		paidUntil, err := rules.ParseClockTime(r.PaidUntil)
		if err != nil {
			return appeal.CreateInput{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "paid_until must be HH:MM")
		}
		facts.PaidUntil = &paidUntil
	}

	return appeal.CreateInput{
		Facts: facts,
		Ticket: appeal.TicketDetails{
			PCNNumber:         r.PCNNumber,
			Authority:         r.Authority,
			VRM:               r.VRM,
			Location:          r.Location,
			ContraventionText: r.ContraventionText,
		},
	}, nil
}
