package session

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists one State per account.
type Repository interface {
	// GetOrCreate returns the account's state, creating an empty one if absent.
	GetOrCreate(ctx context.Context, accountID uuid.UUID) (*State, error)
	// Save writes both the remaining set and the last-drawn id in a single
	// row update.
	Save(ctx context.Context, state *State) error
}
