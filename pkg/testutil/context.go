package testutil

import (
	"context"
	"testing"
	"time"

	id "pcnappeal/pkg/domain"
	"pcnappeal/pkg/requestcontext"
)

// Context returns a request-shaped context for service unit tests: an
// authenticated user, a request ID, and a fixed time.
func Context(t *testing.T, userID id.UserID, at time.Time) context.Context {
	t.Helper()
	ctx := context.Background()
	ctx = requestcontext.WithUserID(ctx, userID)
	ctx = requestcontext.WithRequestID(ctx, "test-"+t.Name())
	ctx = requestcontext.WithTime(ctx, at)
	return ctx
}
