package session

import (
	"time"

	"github.com/google/uuid"
)

// State represents a row in the session_states table: the teams of an
// account still to be drawn in the current round and the last one drawn.
type State struct {
	AccountID    uuid.UUID
	RemainingIDs []uuid.UUID
	LastDrawnID  *uuid.UUID // nil before the first draw of a round
	UpdatedAt    time.Time
}
