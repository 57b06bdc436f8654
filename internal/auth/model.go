package auth

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a row in the accounts table.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is stored in the request context after authentication.
type Identity struct {
	AccountID uuid.UUID
	Email     string
}
