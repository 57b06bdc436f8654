package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/daap14/nextup/internal/team"
)

// ErrExhausted is returned by DrawNext when every team of the round has
// already been drawn.
var ErrExhausted = errors.New("no teams remaining")

// TeamSource is the part of the team roster the randomizer reads.
type TeamSource interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*team.Team, error)
	ListIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)
}

// Randomizer draws teams uniformly at random without replacement.
type Randomizer struct {
	states Repository
	teams  TeamSource
	intN   func(n int) int
}

// Option configures a Randomizer.
type Option func(*Randomizer)

// WithIntN replaces the source of random indexes. f must return a uniformly
// distributed integer in [0, n).
func WithIntN(f func(n int) int) Option {
	return func(r *Randomizer) {
		r.intN = f
	}
}

// NewRandomizer creates a Randomizer over the given state and team stores.
func NewRandomizer(states Repository, teams TeamSource, opts ...Option) *Randomizer {
	r := &Randomizer{
		states: states,
		teams:  teams,
		intN:   rand.IntN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Draw is the outcome of a successful DrawNext.
type Draw struct {
	Team           *team.Team
	RemainingCount int
}

// DrawNext picks one team from the remaining set, removes it from the set and
// records it as last drawn. Team rows are never modified.
func (r *Randomizer) DrawNext(ctx context.Context, accountID uuid.UUID) (*Draw, error) {
	state, err := r.states.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	pruned := false
	for len(state.RemainingIDs) > 0 {
		idx := r.intN(len(state.RemainingIDs))
		id := state.RemainingIDs[idx]
		state.RemainingIDs = removeAt(state.RemainingIDs, idx)

		t, err := r.teams.GetByID(ctx, accountID, id)
		if errors.Is(err, team.ErrTeamNotFound) {
			// stale id, drop it and draw again
			pruned = true
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading drawn team: %w", err)
		}

		state.LastDrawnID = &t.ID
		if err := r.states.Save(ctx, state); err != nil {
			return nil, err
		}

		return &Draw{Team: t, RemainingCount: len(state.RemainingIDs)}, nil
	}

	if pruned {
		if err := r.states.Save(ctx, state); err != nil {
			return nil, err
		}
	}

	return nil, ErrExhausted
}

// ResetRound puts every current team of the account back into the remaining
// set and clears the last drawn team. It returns the new remaining count.
func (r *Randomizer) ResetRound(ctx context.Context, accountID uuid.UUID) (int, error) {
	ids, err := r.teams.ListIDs(ctx, accountID)
	if err != nil {
		return 0, err
	}

	state := &State{
		AccountID:    accountID,
		RemainingIDs: ids,
	}
	if err := r.states.Save(ctx, state); err != nil {
		return 0, err
	}

	return len(ids), nil
}

// Status reports the remaining count and the last drawn team, which is nil
// when nothing was drawn yet or the team was removed since.
type Status struct {
	RemainingCount int
	LastDrawn      *team.Team
}

// Status returns the current round status of an account.
func (r *Randomizer) Status(ctx context.Context, accountID uuid.UUID) (*Status, error) {
	state, err := r.states.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	st := &Status{RemainingCount: len(state.RemainingIDs)}
	if state.LastDrawnID == nil {
		return st, nil
	}

	t, err := r.teams.GetByID(ctx, accountID, *state.LastDrawnID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			return st, nil
		}
		return nil, fmt.Errorf("loading last drawn team: %w", err)
	}
	st.LastDrawn = t

	return st, nil
}

func removeAt(ids []uuid.UUID, idx int) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids)-1)
	out = append(out, ids[:idx]...)
	return append(out, ids[idx+1:]...)
}
