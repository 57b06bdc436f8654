package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/daap14/nextup/internal/api/middleware"
	"github.com/daap14/nextup/internal/api/response"
	"github.com/daap14/nextup/internal/session"
)

// RoundService is the randomizer as seen by the HTTP layer.
type RoundService interface {
	DrawNext(ctx context.Context, accountID uuid.UUID) (*session.Draw, error)
	ResetRound(ctx context.Context, accountID uuid.UUID) (int, error)
	Status(ctx context.Context, accountID uuid.UUID) (*session.Status, error)
}

type statusResponse struct {
	RemainingCount int           `json:"remainingCount"`
	LastSelected   *teamResponse `json:"lastSelected"`
}

type drawResponse struct {
	Team           teamResponse `json:"team"`
	RemainingCount int          `json:"remainingCount"`
}

type resetRoundResponse struct {
	Message        string `json:"message"`
	RemainingCount int    `json:"remainingCount"`
}

// RoundHandler handles the randomizer endpoints.
type RoundHandler struct {
	rounds RoundService
}

// NewRoundHandler creates a new RoundHandler.
func NewRoundHandler(rounds RoundService) *RoundHandler {
	return &RoundHandler{rounds: rounds}
}

// Status handles GET /api/status.
func (h *RoundHandler) Status(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	st, err := h.rounds.Status(r.Context(), identity.AccountID)
	if err != nil {
		internalError(w, r, "Failed to load status", err)
		return
	}

	response.Success(w, http.StatusOK, statusResponse{
		RemainingCount: st.RemainingCount,
		LastSelected:   toTeamResponsePtr(st.LastDrawn),
	}, requestID)
}

// Randomize handles POST /api/randomize.
func (h *RoundHandler) Randomize(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	draw, err := h.rounds.DrawNext(r.Context(), identity.AccountID)
	if err != nil {
		if errors.Is(err, session.ErrExhausted) {
			response.Err(w, http.StatusConflict, "NO_TEAMS_REMAINING", "No teams remaining. Reset to start again.", requestID)
			return
		}
		internalError(w, r, "Failed to draw a team", err)
		return
	}

	middleware.Logger(r.Context()).Info("team drawn",
		"accountId", identity.AccountID,
		"teamId", draw.Team.ID,
		"remaining", draw.RemainingCount,
	)

	response.Success(w, http.StatusOK, drawResponse{
		Team:           toTeamResponse(draw.Team),
		RemainingCount: draw.RemainingCount,
	}, requestID)
}

// ResetRound handles POST /api/reset. Teams are kept; only the round restarts.
func (h *RoundHandler) ResetRound(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	remaining, err := h.rounds.ResetRound(r.Context(), identity.AccountID)
	if err != nil {
		internalError(w, r, "Failed to reset round", err)
		return
	}

	response.Success(w, http.StatusOK, resetRoundResponse{
		Message:        "Randomizer reset.",
		RemainingCount: remaining,
	}, requestID)
}
