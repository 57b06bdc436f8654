package presentation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daap14/nextup/internal/team"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create appends a record for a team owned by accountID. The ownership check
// and the insert are a single statement.
func (r *PostgresRepository) Create(ctx context.Context, accountID uuid.UUID, rec *Record) error {
	if rec.PresentationSeconds < 0 || rec.QASeconds < 0 {
		return ErrNegativeDuration
	}

	query := `
		INSERT INTO presentation_records (team_id, presentation_seconds, qa_seconds)
		SELECT t.id, $3, $4
		FROM teams t
		WHERE t.id = $1 AND t.account_id = $2
		RETURNING id, presented_at`

	err := r.pool.QueryRow(ctx, query, rec.TeamID, accountID, rec.PresentationSeconds, rec.QASeconds).
		Scan(&rec.ID, &rec.PresentedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.ErrTeamNotFound
		}
		return fmt.Errorf("inserting presentation record: %w", err)
	}

	return nil
}

// ListByTeam returns the records of one team, oldest first.
func (r *PostgresRepository) ListByTeam(ctx context.Context, accountID, teamID uuid.UUID) ([]Record, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1 AND account_id = $2)", teamID, accountID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking team existence: %w", err)
	}
	if !exists {
		return nil, team.ErrTeamNotFound
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, presentation_seconds, qa_seconds, presented_at
		FROM presentation_records
		WHERE team_id = $1
		ORDER BY presented_at ASC, id ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing presentation records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating presentation rows: %w", err)
	}

	return records, nil
}

// ListByAccount returns every record of an account grouped by team id, each
// group oldest first. Teams without records have no entry.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID][]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.team_id, p.presentation_seconds, p.qa_seconds, p.presented_at
		FROM presentation_records p
		JOIN teams t ON t.id = p.team_id
		WHERE t.account_id = $1
		ORDER BY p.presented_at ASC, p.id ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing account presentation records: %w", err)
	}
	defer rows.Close()

	byTeam := make(map[uuid.UUID][]Record)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		byTeam[rec.TeamID] = append(byTeam[rec.TeamID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating presentation rows: %w", err)
	}

	return byTeam, nil
}

func scanRecord(rows pgx.Rows) (Record, error) {
	var rec Record
	err := rows.Scan(&rec.ID, &rec.TeamID, &rec.PresentationSeconds, &rec.QASeconds, &rec.PresentedAt)
	if err != nil {
		return Record{}, fmt.Errorf("scanning presentation row: %w", err)
	}
	return rec, nil
}
