package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// GetOrCreate returns the state row of an account, inserting an empty one first
// when none exists.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*State, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO session_states (account_id)
		VALUES ($1)
		ON CONFLICT (account_id) DO NOTHING`, accountID)
	if err != nil {
		return nil, fmt.Errorf("creating session state: %w", err)
	}

	var s State
	err = r.pool.QueryRow(ctx, `
		SELECT account_id, remaining_ids, last_drawn_id, updated_at
		FROM session_states
		WHERE account_id = $1`, accountID,
	).Scan(&s.AccountID, &s.RemainingIDs, &s.LastDrawnID, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying session state: %w", err)
	}
	if s.RemainingIDs == nil {
		s.RemainingIDs = []uuid.UUID{}
	}

	return &s, nil
}

// Save upserts the state row. Concurrent saves for the same account are last
// writer wins.
func (r *PostgresRepository) Save(ctx context.Context, s *State) error {
	remaining := s.RemainingIDs
	if remaining == nil {
		remaining = []uuid.UUID{}
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO session_states (account_id, remaining_ids, last_drawn_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET remaining_ids = EXCLUDED.remaining_ids,
		    last_drawn_id = EXCLUDED.last_drawn_id,
		    updated_at = NOW()
		RETURNING updated_at`,
		s.AccountID, remaining, s.LastDrawnID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving session state: %w", err)
	}

	return nil
}
