// Package domain holds typed identifiers shared across modules.
//
// IDs are distinct types over uuid.UUID so the compiler rejects passing a
// UserID where a CaseID is expected. Parse functions enforce the trust
// boundary invariant: IDs must be valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "pcnappeal/pkg/domain-errors"
)

type (
	// CaseID identifies one appeal case through its whole lifecycle.
	CaseID uuid.UUID

	// UserID identifies the account that owns a case.
	UserID uuid.UUID

	// EventID identifies an audit event.
	EventID uuid.UUID
)

// NewCaseID returns a fresh random case ID.
func NewCaseID() CaseID { return CaseID(uuid.New()) }

// NewUserID returns a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewEventID returns a fresh random event ID.
func NewEventID() EventID { return EventID(uuid.New()) }

func (c CaseID) String() string  { return uuid.UUID(c).String() }
func (u UserID) String() string  { return uuid.UUID(u).String() }
func (e EventID) String() string { return uuid.UUID(e).String() }

func (c CaseID) IsNil() bool  { return uuid.UUID(c) == uuid.Nil }
func (u UserID) IsNil() bool  { return uuid.UUID(u) == uuid.Nil }
func (e EventID) IsNil() bool { return uuid.UUID(e) == uuid.Nil }

// ParseCaseID parses a case ID from its string form.
func ParseCaseID(s string) (CaseID, error) {
	parsed, err := parseStrict(s)
	if err != nil {
		return CaseID{}, err
	}
	return CaseID(parsed), nil
}

// ParseUserID parses a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseStrict(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

func parseStrict(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}
