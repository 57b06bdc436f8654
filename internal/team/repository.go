package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team does not exist or belongs to
// another account.
var ErrTeamNotFound = errors.New("team not found")

// Repository provides account-scoped operations on the teams table. Every
// mutation also keeps the owner's session state consistent: a created team
// joins the remaining set, a deleted team leaves it.
type Repository interface {
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*Team, error)
	List(ctx context.Context, accountID uuid.UUID) ([]Team, error)
	ListIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)
	UpdateNotes(ctx context.Context, accountID, id uuid.UUID, notes *string) (*Team, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) (*Team, error)
	DeleteAll(ctx context.Context, accountID uuid.UUID) error
}
