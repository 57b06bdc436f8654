package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when an email/password pair does not
// match any account.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrPasswordTooLong is returned when a password exceeds the 72 bytes bcrypt
// can hash.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Service provides account registration and authentication.
type Service struct {
	repo       AccountRepository
	tokens     *TokenIssuer
	bcryptCost int
}

// NewService creates a new auth Service. tokens may be nil for callers that
// only create accounts, such as the seed command.
func NewService(repo AccountRepository, tokens *TokenIssuer, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount hashes password and stores a new account.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	a := &Account{
		Email:        NormalizeEmail(email),
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// Register creates an account and returns it together with a fresh token.
func (s *Service) Register(ctx context.Context, email, password string) (*Account, string, error) {
	a, err := s.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(a)
	if err != nil {
		return nil, "", err
	}

	return a, token, nil
}

// Login checks the password for email and returns the account and a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, string, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(a)
	if err != nil {
		return nil, "", err
	}

	return a, token, nil
}

// Authenticate resolves a raw bearer token to an Identity. The account row is
// not consulted; handlers that need it fetch it themselves.
func (s *Service) Authenticate(_ context.Context, rawToken string) (*Identity, error) {
	return s.tokens.Verify(rawToken)
}

// Account returns the account behind an identity.
func (s *Service) Account(ctx context.Context, id *Identity) (*Account, error) {
	return s.repo.GetByID(ctx, id.AccountID)
}

// BootstrapDemoAccount creates the demo account if no account uses email yet.
// It reports whether an account was created.
func (s *Service) BootstrapDemoAccount(ctx context.Context, email, password string) (*Account, bool, error) {
	existing, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, false, fmt.Errorf("looking up demo account: %w", err)
	}

	a, err := s.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, false, fmt.Errorf("creating demo account: %w", err)
	}

	slog.Info("created demo account", "email", a.Email)

	return a, true, nil
}
