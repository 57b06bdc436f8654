package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/daap14/nextup/internal/api/middleware"
	"github.com/daap14/nextup/internal/auth"
	"github.com/daap14/nextup/internal/presentation"
	"github.com/daap14/nextup/internal/session"
	"github.com/daap14/nextup/internal/team"
)

// --- Mock Team Repository ---

type mockTeamRepo struct {
	createFn      func(ctx context.Context, t *team.Team) error
	getByIDFn     func(ctx context.Context, accountID, id uuid.UUID) (*team.Team, error)
	listFn        func(ctx context.Context, accountID uuid.UUID) ([]team.Team, error)
	updateNotesFn func(ctx context.Context, accountID, id uuid.UUID, notes *string) (*team.Team, error)
	deleteFn      func(ctx context.Context, accountID, id uuid.UUID) (*team.Team, error)
	deleteAllFn   func(ctx context.Context, accountID uuid.UUID) error
}

func (m *mockTeamRepo) Create(ctx context.Context, t *team.Team) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	return nil
}

func (m *mockTeamRepo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*team.Team, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, accountID, id)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeamRepo) List(ctx context.Context, accountID uuid.UUID) ([]team.Team, error) {
	if m.listFn != nil {
		return m.listFn(ctx, accountID)
	}
	return []team.Team{}, nil
}

func (m *mockTeamRepo) ListIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	teams, err := m.List(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (m *mockTeamRepo) UpdateNotes(ctx context.Context, accountID, id uuid.UUID, notes *string) (*team.Team, error) {
	if m.updateNotesFn != nil {
		return m.updateNotesFn(ctx, accountID, id, notes)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeamRepo) Delete(ctx context.Context, accountID, id uuid.UUID) (*team.Team, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, accountID, id)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeamRepo) DeleteAll(ctx context.Context, accountID uuid.UUID) error {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx, accountID)
	}
	return nil
}

// --- Mock Record Repository ---

type mockRecordRepo struct {
	createFn        func(ctx context.Context, accountID uuid.UUID, rec *presentation.Record) error
	listByTeamFn    func(ctx context.Context, accountID, teamID uuid.UUID) ([]presentation.Record, error)
	listByAccountFn func(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID][]presentation.Record, error)
}

func (m *mockRecordRepo) Create(ctx context.Context, accountID uuid.UUID, rec *presentation.Record) error {
	if m.createFn != nil {
		return m.createFn(ctx, accountID, rec)
	}
	rec.ID = uuid.New()
	rec.PresentedAt = time.Now().UTC()
	return nil
}

func (m *mockRecordRepo) ListByTeam(ctx context.Context, accountID, teamID uuid.UUID) ([]presentation.Record, error) {
	if m.listByTeamFn != nil {
		return m.listByTeamFn(ctx, accountID, teamID)
	}
	return []presentation.Record{}, nil
}

func (m *mockRecordRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID][]presentation.Record, error) {
	if m.listByAccountFn != nil {
		return m.listByAccountFn(ctx, accountID)
	}
	return map[uuid.UUID][]presentation.Record{}, nil
}

// --- Mock Round Service ---

type mockRounds struct {
	drawNextFn   func(ctx context.Context, accountID uuid.UUID) (*session.Draw, error)
	resetRoundFn func(ctx context.Context, accountID uuid.UUID) (int, error)
	statusFn     func(ctx context.Context, accountID uuid.UUID) (*session.Status, error)
}

func (m *mockRounds) DrawNext(ctx context.Context, accountID uuid.UUID) (*session.Draw, error) {
	if m.drawNextFn != nil {
		return m.drawNextFn(ctx, accountID)
	}
	return nil, session.ErrExhausted
}

func (m *mockRounds) ResetRound(ctx context.Context, accountID uuid.UUID) (int, error) {
	if m.resetRoundFn != nil {
		return m.resetRoundFn(ctx, accountID)
	}
	return 0, nil
}

func (m *mockRounds) Status(ctx context.Context, accountID uuid.UUID) (*session.Status, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, accountID)
	}
	return &session.Status{}, nil
}

// --- In-memory account repository for the auth service ---

type memAccountRepo struct {
	mu       sync.Mutex
	accounts []*auth.Account
}

func (m *memAccountRepo) Create(_ context.Context, a *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return auth.ErrDuplicateEmail
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	cp := *a
	m.accounts = append(m.accounts, &cp)
	return nil
}

func (m *memAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (m *memAccountRepo) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func newAuthService() *auth.Service {
	return auth.NewService(&memAccountRepo{}, auth.NewTokenIssuer("test-secret", time.Hour, nil), bcrypt.MinCost)
}

// --- Helpers ---

var testAccountID = uuid.New()

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

// withIdentity attaches the test account to the request, as the Auth
// middleware would.
func withIdentity(req *http.Request) *http.Request {
	ctx := middleware.WithIdentity(req.Context(), &auth.Identity{AccountID: testAccountID, Email: "a@x.com"})
	return req.WithContext(ctx)
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected an error object, got %s", w.Body.String())
	return errObj["code"].(string)
}

func sampleTeam(id uuid.UUID, name string) *team.Team {
	return &team.Team{
		ID:        id,
		AccountID: testAccountID,
		Name:      name,
		Topic:     team.DefaultTopic,
		Members:   []string{"Ann", "Bob"},
		CreatedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}
