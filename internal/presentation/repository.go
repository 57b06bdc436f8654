package presentation

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNegativeDuration is returned when a record carries a negative duration.
var ErrNegativeDuration = errors.New("durations must be non-negative")

// Repository provides append-only access to presentation records. All
// operations are scoped to the account that owns the team; a team of another
// account is reported as team.ErrTeamNotFound.
type Repository interface {
	Create(ctx context.Context, accountID uuid.UUID, rec *Record) error
	ListByTeam(ctx context.Context, accountID, teamID uuid.UUID) ([]Record, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID][]Record, error)
}
