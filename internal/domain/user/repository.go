package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for rider accounts.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Save stores a new account. It returns a conflict error when the
	// email is taken.
	Save(ctx context.Context, u *User) error
}
