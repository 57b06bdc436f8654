package validation

import (
	"strings"

	"github.com/daap14/nextup/internal/team"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateTeamRequest is the body of POST /api/teams.
type CreateTeamRequest struct {
	Name    string   `json:"name" validate:"required,max=255"`
	Topic   string   `json:"topic" validate:"max=255"`
	Members []string `json:"members" validate:"max=50,dive,max=255"`
}

// Normalize trims all fields and drops blank member names.
func (r *CreateTeamRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Topic = strings.TrimSpace(r.Topic)
	r.Members = team.NormalizeMembers(r.Members)
}

// NotesRequest is the body of POST /api/teams/{id}/notes. The key must be
// present; an empty or blank value clears the notes.
type NotesRequest struct {
	Notes *string `json:"notes" validate:"required,max=10000"`
}

// Value returns the notes to store, nil when blank.
func (r *NotesRequest) Value() *string {
	if r.Notes == nil || strings.TrimSpace(*r.Notes) == "" {
		return nil
	}
	return r.Notes
}

// PresentationRequest is the body of POST /api/teams/{teamId}/presentation.
// Pointers distinguish a missing field from an explicit zero.
type PresentationRequest struct {
	PresentationSeconds *int `json:"presentationSeconds" validate:"required,gte=0"`
	QASeconds           *int `json:"qaSeconds" validate:"required,gte=0"`
}
