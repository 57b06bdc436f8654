package team

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTopic is assigned to teams created without a topic.
const DefaultTopic = "TBD"

// Limits shared by the API schema and roster files. Lengths count characters.
const (
	MaxFieldLength = 255
	MaxMembers     = 50
)

// Team represents a row in the teams table.
type Team struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	Topic     string
	Members   []string
	Notes     *string // nil when no notes were attached
	CreatedAt time.Time
}

// NormalizeMembers trims member names and drops blank ones.
func NormalizeMembers(members []string) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
