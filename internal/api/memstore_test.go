package api_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/nextup/internal/auth"
	"github.com/daap14/nextup/internal/presentation"
	"github.com/daap14/nextup/internal/session"
	"github.com/daap14/nextup/internal/team"
)

// memStore backs the in-memory repositories with the same cross-table rules
// as the Postgres ones.
type memStore struct {
	mu       sync.Mutex
	accounts []auth.Account
	teams    []team.Team
	records  []presentation.Record
	states   map[uuid.UUID]session.State
}

func newMemStore() *memStore {
	return &memStore{states: map[uuid.UUID]session.State{}}
}

type memAccounts struct{ s *memStore }

func (m memAccounts) Create(_ context.Context, a *auth.Account) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.accounts {
		if existing.Email == a.Email {
			return auth.ErrDuplicateEmail
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	m.s.accounts = append(m.s.accounts, *a)
	return nil
}

func (m memAccounts) GetByID(_ context.Context, id uuid.UUID) (*auth.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.accounts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (m memAccounts) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

type memTeams struct{ s *memStore }

func (m memTeams) Create(_ context.Context, t *team.Team) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	if t.Members == nil {
		t.Members = []string{}
	}
	m.s.teams = append(m.s.teams, *t)
	st := m.s.states[t.AccountID]
	st.AccountID = t.AccountID
	st.RemainingIDs = append(append([]uuid.UUID(nil), st.RemainingIDs...), t.ID)
	m.s.states[t.AccountID] = st
	return nil
}

func (m memTeams) GetByID(_ context.Context, accountID, id uuid.UUID) (*team.Team, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, t := range m.s.teams {
		if t.ID == id && t.AccountID == accountID {
			return &t, nil
		}
	}
	return nil, team.ErrTeamNotFound
}

func (m memTeams) List(_ context.Context, accountID uuid.UUID) ([]team.Team, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []team.Team{}
	for _, t := range m.s.teams {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m memTeams) ListIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	teams, _ := m.List(ctx, accountID)
	ids := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (m memTeams) UpdateNotes(_ context.Context, accountID, id uuid.UUID, notes *string) (*team.Team, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range m.s.teams {
		if m.s.teams[i].ID == id && m.s.teams[i].AccountID == accountID {
			m.s.teams[i].Notes = notes
			t := m.s.teams[i]
			return &t, nil
		}
	}
	return nil, team.ErrTeamNotFound
}

func (m memTeams) Delete(_ context.Context, accountID, id uuid.UUID) (*team.Team, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, t := range m.s.teams {
		if t.ID != id || t.AccountID != accountID {
			continue
		}
		m.s.teams = append(m.s.teams[:i:i], m.s.teams[i+1:]...)
		m.s.dropRecordsLocked(func(r presentation.Record) bool { return r.TeamID == id })

		st := m.s.states[accountID]
		kept := []uuid.UUID{}
		for _, rid := range st.RemainingIDs {
			if rid != id {
				kept = append(kept, rid)
			}
		}
		st.RemainingIDs = kept
		if st.LastDrawnID != nil && *st.LastDrawnID == id {
			st.LastDrawnID = nil
		}
		m.s.states[accountID] = st
		return &t, nil
	}
	return nil, team.ErrTeamNotFound
}

func (m memTeams) DeleteAll(_ context.Context, accountID uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	owned := map[uuid.UUID]bool{}
	kept := m.s.teams[:0:0]
	for _, t := range m.s.teams {
		if t.AccountID == accountID {
			owned[t.ID] = true
			continue
		}
		kept = append(kept, t)
	}
	m.s.teams = kept
	m.s.dropRecordsLocked(func(r presentation.Record) bool { return owned[r.TeamID] })
	delete(m.s.states, accountID)
	return nil
}

func (s *memStore) dropRecordsLocked(match func(presentation.Record) bool) {
	kept := s.records[:0:0]
	for _, r := range s.records {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	s.records = kept
}

func (s *memStore) ownsLocked(accountID, teamID uuid.UUID) bool {
	for _, t := range s.teams {
		if t.ID == teamID && t.AccountID == accountID {
			return true
		}
	}
	return false
}

type memRecords struct{ s *memStore }

func (m memRecords) Create(_ context.Context, accountID uuid.UUID, rec *presentation.Record) error {
	if rec.PresentationSeconds < 0 || rec.QASeconds < 0 {
		return presentation.ErrNegativeDuration
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if !m.s.ownsLocked(accountID, rec.TeamID) {
		return team.ErrTeamNotFound
	}
	rec.ID = uuid.New()
	rec.PresentedAt = time.Now().UTC()
	m.s.records = append(m.s.records, *rec)
	return nil
}

func (m memRecords) ListByTeam(_ context.Context, accountID, teamID uuid.UUID) ([]presentation.Record, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if !m.s.ownsLocked(accountID, teamID) {
		return nil, team.ErrTeamNotFound
	}
	out := []presentation.Record{}
	for _, r := range m.s.records {
		if r.TeamID == teamID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memRecords) ListByAccount(_ context.Context, accountID uuid.UUID) (map[uuid.UUID][]presentation.Record, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := map[uuid.UUID][]presentation.Record{}
	for _, r := range m.s.records {
		if m.s.ownsLocked(accountID, r.TeamID) {
			out[r.TeamID] = append(out[r.TeamID], r)
		}
	}
	return out, nil
}

type memStates struct{ s *memStore }

func (m memStates) GetOrCreate(_ context.Context, accountID uuid.UUID) (*session.State, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	st, ok := m.s.states[accountID]
	if !ok {
		st = session.State{AccountID: accountID, RemainingIDs: []uuid.UUID{}}
		m.s.states[accountID] = st
	}
	st.RemainingIDs = append([]uuid.UUID(nil), st.RemainingIDs...)
	return &st, nil
}

func (m memStates) Save(_ context.Context, st *session.State) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *st
	cp.RemainingIDs = append([]uuid.UUID(nil), st.RemainingIDs...)
	cp.UpdatedAt = time.Now().UTC()
	m.s.states[st.AccountID] = cp
	return nil
}
