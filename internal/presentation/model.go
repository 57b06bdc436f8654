package presentation

import (
	"time"

	"github.com/google/uuid"
)

// Record represents a row in the presentation_records table: one
// (presentation, Q&A) duration pair measured for a team.
type Record struct {
	ID                  uuid.UUID
	TeamID              uuid.UUID
	PresentationSeconds int
	QASeconds           int
	PresentedAt         time.Time
}

// TotalSeconds returns the combined duration of both phases.
func (r Record) TotalSeconds() int {
	return r.PresentationSeconds + r.QASeconds
}
