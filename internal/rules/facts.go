package rules

import (
	"encoding/json"
	"fmt"
	"time"
)

// IssuerType distinguishes council PCNs from private parking charges; the
// applicable regulations differ downstream.
type IssuerType string

const (
	IssuerCouncil IssuerType = "council"
	IssuerPrivate IssuerType = "private"
)

// ClockTime is a time-of-day with no date. Tickets record paid-until as a
// bare clock reading, so the grace boundary must anchor it to a calendar day
// before any comparison.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (24-hour).
func ParseClockTime(s string) (ClockTime, error) {
	var ct ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &ct.Hour, &ct.Minute); err != nil {
		return ClockTime{}, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	if ct.Hour < 0 || ct.Hour > 23 || ct.Minute < 0 || ct.Minute > 59 {
		return ClockTime{}, fmt.Errorf("clock time %q out of range", s)
	}
	return ct, nil
}

func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
}

// MarshalJSON encodes the clock time as "HH:MM".
func (ct ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.String())
}

// UnmarshalJSON decodes "HH:MM".
func (ct *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// OnDay anchors the clock time to the calendar day of ref, in ref's location.
func (ct ClockTime) OnDay(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), ct.Hour, ct.Minute, 0, 0, ref.Location())
}

// Facts is the complete, user-confirmed fact set for one case. Built once
// at intake; immutable within an analysis pass.
type Facts struct {
	IssuerType        IssuerType `json:"issuer_type"`
	ContraventionCode string     `json:"contravention_code"`
	IssueAt           time.Time  `json:"issue_at"`

	Paid          bool       `json:"paid"`
	PaidUntil     *ClockTime `json:"paid_until,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	PermitType    string     `json:"permit_type,omitempty"`

	LoadingUnloading    bool `json:"loading_unloading"`
	PassengerDropoff    bool `json:"passenger_dropoff"`
	BlueBadge           bool `json:"blue_badge"`
	MedicalEmergency    bool `json:"medical_emergency"`
	SignageVisible      bool `json:"signage_visible"`
	MarkingsVisible     bool `json:"markings_visible"`
	NoObservationPeriod bool `json:"no_observation_period"`
	LateCouncilReply    bool `json:"late_council_reply"`
}

// Complete reports whether the facts carry the minimum needed for analysis.
// Incomplete facts refuse the draft → analyzed transition; they are never a
// process-level failure.
func (f Facts) Complete() bool {
	if f.IssuerType != IssuerCouncil && f.IssuerType != IssuerPrivate {
		return false
	}
	return f.ContraventionCode != "" && !f.IssueAt.IsZero()
}
