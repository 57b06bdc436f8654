package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/daap14/nextup/internal/auth"
)

// --- In-memory account repository ---

type memAccountRepo struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*auth.Account
	createFn func(ctx context.Context, a *auth.Account) error
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{byID: map[uuid.UUID]*auth.Account{}}
}

func (m *memAccountRepo) Create(ctx context.Context, a *auth.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return auth.ErrDuplicateEmail
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccountRepo) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func newTestService(repo auth.AccountRepository) *auth.Service {
	return auth.NewService(repo, auth.NewTokenIssuer("test-secret", time.Hour, nil), bcrypt.MinCost)
}

// --- Tests ---

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a@x.com", auth.NormalizeEmail("  A@X.com "))
}

func TestRegister_HashesPasswordAndIssuesToken(t *testing.T) {
	t.Parallel()

	repo := newMemAccountRepo()
	svc := newTestService(repo)

	acct, token, err := svc.Register(context.Background(), "A@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", acct.Email)
	assert.NotEqual(t, "pw123456", acct.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("pw123456")))

	id, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, id.AccountID)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	t.Parallel()

	repo := newMemAccountRepo()
	svc := newTestService(repo)

	_, _, err := svc.Register(context.Background(), "a@x.com", strings.Repeat("é", 40))
	assert.ErrorIs(t, err, auth.ErrPasswordTooLong)

	_, err = repo.GetByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMemAccountRepo())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "A@X.COM", "another1")
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMemAccountRepo())
	ctx := context.Background()
	registered, _, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "correct credentials", email: "a@x.com", password: "pw123456"},
		{name: "email is case insensitive", email: " A@X.com", password: "pw123456"},
		{name: "wrong password", email: "a@x.com", password: "wrong-password", wantErr: auth.ErrInvalidCredentials},
		{name: "unknown email", email: "b@x.com", password: "pw123456", wantErr: auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, token, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, acct.ID)
			assert.NotEmpty(t, token)
		})
	}
}

func TestAccount_ResolvesIdentity(t *testing.T) {
	t.Parallel()

	repo := newMemAccountRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	acct, _, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	got, err := svc.Account(ctx, &auth.Identity{AccountID: acct.ID})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = svc.Account(ctx, &auth.Identity{AccountID: uuid.New()})
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}

func TestBootstrapDemoAccount_Idempotent(t *testing.T) {
	t.Parallel()

	repo := newMemAccountRepo()
	svc := auth.NewService(repo, nil, bcrypt.MinCost)
	ctx := context.Background()

	first, created, err := svc.BootstrapDemoAccount(ctx, "demo@x.com", "demo1234")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.BootstrapDemoAccount(ctx, "demo@x.com", "demo1234")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestBootstrapDemoAccount_CreateFails(t *testing.T) {
	t.Parallel()

	repo := newMemAccountRepo()
	repo.createFn = func(context.Context, *auth.Account) error { return errors.New("db down") }
	svc := auth.NewService(repo, nil, bcrypt.MinCost)

	_, _, err := svc.BootstrapDemoAccount(context.Background(), "demo@x.com", "demo1234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating demo account")
}
