package sessions

import (
	"context"
	"time"
)

// Session is a store-persisted credential tying an opaque id to a user.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`  // immutable after creation
	LastActive time.Time `json:"last_active"` // monotonically non-decreasing
}

// Store manages the sessions belonging to a user. Each session is an
// individually keyed record addressable by (userID, sessionID), so concurrent
// operations on distinct sessions of the same user cannot lose each other's
// writes.
type Store interface {
	// Create records a new session with CreatedAt = LastActive = now. A
	// session id that already exists is left untouched, which makes repeated
	// self-heal creates idempotent.
	Create(ctx context.Context, userID, sessionID string) error

	// List returns the user's sessions ordered by creation time.
	List(ctx context.Context, userID string) ([]Session, error)

	// IsValid reports whether the user owns a session with the given id.
	IsValid(ctx context.Context, userID, sessionID string) (bool, error)

	// RefreshLastActive moves the session's LastActive forward to now,
	// leaving other sessions untouched. A missing session is not an error.
	RefreshLastActive(ctx context.Context, userID, sessionID string) error

	// Invalidate removes the session. A missing session is not an error.
	Invalidate(ctx context.Context, userID, sessionID string) error
}
