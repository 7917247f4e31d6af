package users

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by repo lookups when no matching user exists.
var ErrNotFound = errors.New("user not found")

// Repo is the document-store boundary for user records.
type Repo interface {
	Upsert(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, email string) error
}
