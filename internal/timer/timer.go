// Package timer implements the two-phase presentation countdown used by the
// terminal client. A Timer moves through ready, presentation and qa, and
// hands each measured (presentation, Q&A) pair to a Recorder.
//
// When a phase reaches zero the timer stops and stays in that phase; moving
// on always takes an explicit AdvanceToQA, Finish or Reset. Elapsed seconds
// are derived from the countdown (configured length minus remaining), so time
// spent paused is not counted.
package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Phase is the current stage of a Timer.
type Phase string

const (
	PhaseReady        Phase = "ready"
	PhasePresentation Phase = "presentation"
	PhaseQA           Phase = "qa"
	PhaseComplete     Phase = "complete"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// current phase.
var ErrInvalidTransition = errors.New("invalid timer transition")

// Recorder persists one measured duration pair for a team.
type Recorder interface {
	Record(ctx context.Context, teamID uuid.UUID, presentationSeconds, qaSeconds int) error
}

// Config holds the timer settings.
type Config struct {
	PresentationMinutes int
	QAMinutes           int
	WarningSeconds      int
	TickInterval        time.Duration
	Clock               clockwork.Clock
}

// DefaultConfig returns 7 minutes of presentation, 3 of Q&A, a two minute
// warning and one tick per second on the real clock.
func DefaultConfig() Config {
	return Config{
		PresentationMinutes: 7,
		QAMinutes:           3,
		WarningSeconds:      120,
		TickInterval:        time.Second,
		Clock:               clockwork.NewRealClock(),
	}
}

// Snapshot is a copy of the timer state for display.
type Snapshot struct {
	TeamID              uuid.UUID
	Phase               Phase
	RemainingSeconds    int
	Running             bool
	PresentationSeconds int
	QASeconds           int
	Warning             bool
}

// Timer is safe for use by one Run loop and any number of callers issuing
// actions.
type Timer struct {
	cfg      Config
	recorder Recorder

	mu                  sync.Mutex
	teamID              uuid.UUID
	phase               Phase
	remaining           int
	running             bool
	presentationSeconds int
	qaSeconds           int
}

// New creates a Timer in the ready phase. Zero fields of cfg fall back to
// DefaultConfig.
func New(cfg Config, recorder Recorder) *Timer {
	def := DefaultConfig()
	if cfg.PresentationMinutes <= 0 {
		cfg.PresentationMinutes = def.PresentationMinutes
	}
	if cfg.QAMinutes <= 0 {
		cfg.QAMinutes = def.QAMinutes
	}
	if cfg.WarningSeconds <= 0 {
		cfg.WarningSeconds = def.WarningSeconds
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = def.Clock
	}

	return &Timer{cfg: cfg, recorder: recorder, phase: PhaseReady}
}

// SetTeam selects the team measurements are recorded for. uuid.Nil disables
// recording.
func (t *Timer) SetTeam(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teamID = id
}

// Start begins a new presentation from ready or complete. In any other phase
// it resumes a paused countdown.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	if t.phase == PhaseReady || t.phase == PhaseComplete {
		t.phase = PhasePresentation
		t.remaining = t.cfg.PresentationMinutes * 60
		t.presentationSeconds = 0
		t.qaSeconds = 0
	}
	t.running = true
}

// Pause stops the countdown without changing phase or remaining time.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Tick advances a running countdown by one unit. It reports whether the state
// changed.
func (t *Timer) Tick() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return t.snapshotLocked(), false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.running = false
	}
	return t.snapshotLocked(), true
}

// AdvanceToQA ends the presentation phase, records the presentation time with
// zero Q&A and starts the Q&A countdown. The transition happens even when
// recording fails; the recorder error is returned.
func (t *Timer) AdvanceToQA(ctx context.Context) error {
	t.mu.Lock()
	if t.phase != PhasePresentation {
		phase := t.phase
		t.mu.Unlock()
		return fmt.Errorf("%w: Q&A is only available during the presentation phase (now %s)", ErrInvalidTransition, phase)
	}

	elapsed := clampElapsed(t.cfg.PresentationMinutes*60 - t.remaining)
	t.presentationSeconds = elapsed
	t.phase = PhaseQA
	t.remaining = t.cfg.QAMinutes * 60
	t.running = true
	teamID := t.teamID
	t.mu.Unlock()

	return t.record(ctx, teamID, elapsed, 0)
}

// Finish ends the Q&A phase, records the complete session and moves to
// complete, keeping the measured counters for display.
func (t *Timer) Finish(ctx context.Context) error {
	t.mu.Lock()
	if t.phase != PhaseQA {
		phase := t.phase
		t.mu.Unlock()
		return fmt.Errorf("%w: finish is only available during the Q&A phase (now %s)", ErrInvalidTransition, phase)
	}

	pres, qa, teamID := t.closeQALocked()
	t.phase = PhaseComplete
	t.mu.Unlock()

	return t.record(ctx, teamID, pres, qa)
}

// Reset returns the timer to ready. When called during Q&A it first records
// the complete session.
func (t *Timer) Reset(ctx context.Context) error {
	t.mu.Lock()
	inQA := t.phase == PhaseQA
	var pres, qa int
	var teamID uuid.UUID
	if inQA {
		pres, qa, teamID = t.closeQALocked()
	}
	t.phase = PhaseReady
	t.running = false
	t.remaining = 0
	t.presentationSeconds = 0
	t.qaSeconds = 0
	t.mu.Unlock()

	if !inQA {
		return nil
	}
	return t.record(ctx, teamID, pres, qa)
}

// Snapshot returns the current state.
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Run ticks the timer at the configured interval until ctx is done. onTick,
// if set, receives every changed state.
func (t *Timer) Run(ctx context.Context, onTick func(Snapshot)) error {
	ticker := t.cfg.Clock.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			snap, changed := t.Tick()
			if changed && onTick != nil {
				onTick(snap)
			}
		}
	}
}

func (t *Timer) closeQALocked() (pres, qa int, teamID uuid.UUID) {
	t.qaSeconds = clampElapsed(t.cfg.QAMinutes*60 - t.remaining)
	t.running = false
	t.remaining = 0
	return t.presentationSeconds, t.qaSeconds, t.teamID
}

func (t *Timer) snapshotLocked() Snapshot {
	return Snapshot{
		TeamID:              t.teamID,
		Phase:               t.phase,
		RemainingSeconds:    t.remaining,
		Running:             t.running,
		PresentationSeconds: t.presentationSeconds,
		QASeconds:           t.qaSeconds,
		Warning:             t.phase == PhasePresentation && t.remaining <= t.cfg.WarningSeconds,
	}
}

func (t *Timer) record(ctx context.Context, teamID uuid.UUID, pres, qa int) error {
	if t.recorder == nil || teamID == uuid.Nil {
		return nil
	}
	if err := t.recorder.Record(ctx, teamID, pres, qa); err != nil {
		return fmt.Errorf("recording presentation: %w", err)
	}
	return nil
}

func clampElapsed(s int) int {
	if s < 0 {
		return 0
	}
	return s
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
