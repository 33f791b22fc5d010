package appeal

import (
	"context"
	"errors"

	id "pcnappeal/pkg/domain"
)

// Store errors. Services translate these into coded domain errors; stores
// stay free of transport concerns.
var (
	ErrNotFound        = errors.New("case not found")
	ErrVersionConflict = errors.New("case version conflict")
)

// CaseStore persists appeal cases. Update performs a compare-and-swap on
// the version number: the write succeeds only when the stored version still
// equals expectedVersion, and the stored version is then incremented. This
// is the single mechanism serializing concurrent writers per case.
type CaseStore interface {
	Create(ctx context.Context, c Case) error
	Get(ctx context.Context, caseID id.CaseID) (Case, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]Case, error)
	Update(ctx context.Context, c Case, expectedVersion int64) (Case, error)
}
