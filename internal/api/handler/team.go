package handler

import (
	"errors"
	"net/http"

	"github.com/daap14/nextup/internal/api/middleware"
	"github.com/daap14/nextup/internal/api/response"
	"github.com/daap14/nextup/internal/api/validation"
	"github.com/daap14/nextup/internal/presentation"
	"github.com/daap14/nextup/internal/team"
)

type teamResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Topic     string   `json:"topic"`
	Members   []string `json:"members"`
	Notes     *string  `json:"notes"`
	CreatedAt string   `json:"createdAt"`
}

type teamWithRecordsResponse struct {
	teamResponse
	Presentations []recordResponse `json:"presentations"`
}

func toTeamResponse(t *team.Team) teamResponse {
	members := t.Members
	if members == nil {
		members = []string{}
	}
	return teamResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Topic:     t.Topic,
		Members:   members,
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt.UTC().Format(timestampLayout),
	}
}

// toTeamResponsePtr maps nil to nil for optional team fields.
func toTeamResponsePtr(t *team.Team) *teamResponse {
	if t == nil {
		return nil
	}
	resp := toTeamResponse(t)
	return &resp
}

// TeamHandler handles the team roster endpoints.
type TeamHandler struct {
	teams   team.Repository
	records presentation.Repository
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teams team.Repository, records presentation.Repository) *TeamHandler {
	return &TeamHandler{teams: teams, records: records}
}

// List handles GET /api/teams. Each team carries its presentation records.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	teams, err := h.teams.List(r.Context(), identity.AccountID)
	if err != nil {
		internalError(w, r, "Failed to list teams", err)
		return
	}

	byTeam, err := h.records.ListByAccount(r.Context(), identity.AccountID)
	if err != nil {
		internalError(w, r, "Failed to list teams", err)
		return
	}

	items := make([]teamWithRecordsResponse, 0, len(teams))
	for i := range teams {
		recs := byTeam[teams[i].ID]
		item := teamWithRecordsResponse{
			teamResponse:  toTeamResponse(&teams[i]),
			Presentations: make([]recordResponse, 0, len(recs)),
		}
		for j := range recs {
			item.Presentations = append(item.Presentations, toRecordResponse(&recs[j]))
		}
		items = append(items, item)
	}

	response.Success(w, http.StatusOK, map[string]any{"teams": items}, requestID)
}

// Create handles POST /api/teams. The new team joins the current round.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req validation.CreateTeamRequest
	if !decodeBody(w, r, &req, req.Normalize) {
		return
	}

	t := &team.Team{
		AccountID: identity.AccountID,
		Name:      req.Name,
		Topic:     req.Topic,
		Members:   req.Members,
	}
	if t.Topic == "" {
		t.Topic = team.DefaultTopic
	}

	if err := h.teams.Create(r.Context(), t); err != nil {
		internalError(w, r, "Failed to create team", err)
		return
	}

	response.Success(w, http.StatusCreated, map[string]any{"team": toTeamResponse(t)}, requestID)
}

// Delete handles DELETE /api/teams/{id} and returns the removed team.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := teamIDParam(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.teams.Delete(r.Context(), identity.AccountID, id)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		internalError(w, r, "Failed to delete team", err, "id", id)
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"team": toTeamResponse(removed)}, requestID)
}

// Reset handles POST /api/teams/reset: every team, record and the round
// state of the account are removed.
func (h *TeamHandler) Reset(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.teams.DeleteAll(r.Context(), identity.AccountID); err != nil {
		internalError(w, r, "Failed to reset teams", err)
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"teams": []teamResponse{}}, requestID)
}

// UpdateNotes handles POST /api/teams/{id}/notes.
func (h *TeamHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := teamIDParam(w, r, "id")
	if !ok {
		return
	}

	var req validation.NotesRequest
	if !decodeBody(w, r, &req, nil) {
		return
	}

	t, err := h.teams.UpdateNotes(r.Context(), identity.AccountID, id, req.Value())
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		internalError(w, r, "Failed to save notes", err, "id", id)
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"team": toTeamResponse(t)}, requestID)
}
