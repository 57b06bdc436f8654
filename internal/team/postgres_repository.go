package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const teamColumns = `id, account_id, name, topic, members, notes, created_at`

// Create inserts a new team and appends it to the owner's remaining set,
// creating the session state row if it does not exist yet.
func (r *PostgresRepository) Create(ctx context.Context, t *Team) error {
	if t.Members == nil {
		t.Members = []string{}
	}
	if t.Topic == "" {
		t.Topic = DefaultTopic
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO teams (account_id, name, topic, members, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`

		err := tx.QueryRow(ctx, query, t.AccountID, t.Name, t.Topic, t.Members, t.Notes).
			Scan(&t.ID, &t.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting team: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO session_states (account_id, remaining_ids)
			VALUES ($1, ARRAY[$2::uuid])
			ON CONFLICT (account_id) DO UPDATE
			SET remaining_ids = array_append(session_states.remaining_ids, $2::uuid),
			    updated_at = NOW()`,
			t.AccountID, t.ID)
		if err != nil {
			return fmt.Errorf("adding team to remaining set: %w", err)
		}

		return nil
	})
}

// GetByID retrieves a single team owned by accountID.
func (r *PostgresRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams
		WHERE id = $1 AND account_id = $2`

	t, err := scanTeam(r.pool.QueryRow(ctx, query, id, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return t, nil
}

// List retrieves all teams of an account ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context, accountID uuid.UUID) ([]Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	teams := []Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	return teams, nil
}

// ListIDs returns the ids of all teams of an account in creation order.
func (r *PostgresRepository) ListIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM teams
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing team ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collecting team ids: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	return ids, nil
}

// UpdateNotes replaces the notes of a team. A nil notes value clears them.
func (r *PostgresRepository) UpdateNotes(ctx context.Context, accountID, id uuid.UUID, notes *string) (*Team, error) {
	query := `
		UPDATE teams SET notes = $3
		WHERE id = $1 AND account_id = $2
		RETURNING ` + teamColumns

	t, err := scanTeam(r.pool.QueryRow(ctx, query, id, accountID, notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("updating team notes: %w", err)
	}

	return t, nil
}

// Delete removes a team, its presentation records (FK cascade) and any
// reference to it in the owner's session state. It returns the removed team.
func (r *PostgresRepository) Delete(ctx context.Context, accountID, id uuid.UUID) (*Team, error) {
	var removed *Team

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			DELETE FROM teams
			WHERE id = $1 AND account_id = $2
			RETURNING ` + teamColumns

		t, err := scanTeam(tx.QueryRow(ctx, query, id, accountID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("deleting team: %w", err)
		}
		removed = t

		_, err = tx.Exec(ctx, `
			UPDATE session_states
			SET remaining_ids = array_remove(remaining_ids, $2::uuid),
			    last_drawn_id = CASE WHEN last_drawn_id = $2::uuid THEN NULL ELSE last_drawn_id END,
			    updated_at = NOW()
			WHERE account_id = $1`,
			accountID, id)
		if err != nil {
			return fmt.Errorf("purging team from session state: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// DeleteAll removes every team of an account together with their
// presentation records and the account's session state.
func (r *PostgresRepository) DeleteAll(ctx context.Context, accountID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE account_id = $1`, accountID); err != nil {
			return fmt.Errorf("deleting teams: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM session_states WHERE account_id = $1`, accountID); err != nil {
			return fmt.Errorf("deleting session state: %w", err)
		}
		return nil
	})
}

func scanTeam(row pgx.Row) (*Team, error) {
	var t Team
	if err := row.Scan(&t.ID, &t.AccountID, &t.Name, &t.Topic, &t.Members, &t.Notes, &t.CreatedAt); err != nil {
		return nil, err
	}
	if t.Members == nil {
		t.Members = []string{}
	}
	return &t, nil
}
