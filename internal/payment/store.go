package payment

import (
	"context"
	"time"
)

// idempotencyTTL bounds how long processed event IDs are remembered. The
// provider stops retrying well inside this window.
const idempotencyTTL = 72 * time.Hour

// IdempotencyStore remembers which provider events have been processed.
// Claim is atomic: exactly one caller per event ID observes claimed=true,
// concurrent and repeated deliveries observe false. This is the sole replay
// protection; the signature timestamp only narrows the attack window.
type IdempotencyStore interface {
	Claim(ctx context.Context, eventID string) (claimed bool, err error)
	Release(ctx context.Context, eventID string) error
}
