// Package account tracks what each user has bought and summarizes their
// appeal activity.
package account

import (
	"time"

	id "pcnappeal/pkg/domain"
)

// PlanState is the user's current entitlement.
type PlanState string

const (
	// PlanFree is the default: analysis visible, letters locked.
	PlanFree PlanState = "free"
	// PlanSingleUse covers letter generation bought case by case.
	PlanSingleUse PlanState = "single_use"
	// PlanSubscriber covers unlimited letters until PlanExpiry.
	PlanSubscriber PlanState = "subscriber"
)

// Account is one user's billing record.
type Account struct {
	UserID      id.UserID
	Plan        PlanState
	PlanExpiry  time.Time
	AppealsUsed int
	UpdatedAt   time.Time
}

// ActiveSubscriber reports whether a subscription covers the given time.
func (a Account) ActiveSubscriber(at time.Time) bool {
	return a.Plan == PlanSubscriber && at.Before(a.PlanExpiry)
}

// Stats is the summary served by GET /me/stats.
type Stats struct {
	TotalAppeals     int       `json:"total_appeals"`
	CompletedAppeals int       `json:"completed_appeals"`
	PendingAppeals   int       `json:"pending_appeals"`
	Plan             string    `json:"plan"`
	PlanExpiry       time.Time `json:"plan_expiry,omitzero"`
	AppealsUsed      int       `json:"appeals_used"`
}
