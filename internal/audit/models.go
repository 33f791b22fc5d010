// Package audit captures case lifecycle events. Events are transport-
// agnostic: stores and sinks fan out without touching domain logic.
package audit

import (
	"time"

	id "pcnappeal/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/financial significance:
	// payment confirmations and letter generation. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and visibility.
	// These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	CaseID    id.CaseID
	UserID    id.UserID
	Action    string
	Decision  string
	Reason    string
	RequestID string
}

type AuditEvent string

const (
	EventCaseCreated      AuditEvent = "case_created"
	EventCaseAnalyzed     AuditEvent = "case_analyzed"
	EventPaymentConfirmed AuditEvent = "payment_confirmed"
	EventPaymentDuplicate AuditEvent = "payment_duplicate"
	EventPaymentRejected  AuditEvent = "payment_rejected"
	EventLetterGenerated  AuditEvent = "letter_generated"
	EventLetterFailed     AuditEvent = "letter_failed"
)

// eventCategories maps each audit event to its category. Payment and letter
// events carry financial weight and are compliance; the rest are ops.
var eventCategories = map[AuditEvent]EventCategory{
	EventCaseCreated:      CategoryOperations,
	EventCaseAnalyzed:     CategoryOperations,
	EventPaymentConfirmed: CategoryCompliance,
	EventPaymentDuplicate: CategoryOperations,
	EventPaymentRejected:  CategoryCompliance,
	EventLetterGenerated:  CategoryCompliance,
	EventLetterFailed:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
