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

type recordResponse struct {
	ID                  string `json:"id"`
	TeamID              string `json:"teamId"`
	PresentationSeconds int    `json:"presentationSeconds"`
	QASeconds           int    `json:"qaSeconds"`
	PresentedAt         string `json:"presentedAt"`
}

func toRecordResponse(rec *presentation.Record) recordResponse {
	return recordResponse{
		ID:                  rec.ID.String(),
		TeamID:              rec.TeamID.String(),
		PresentationSeconds: rec.PresentationSeconds,
		QASeconds:           rec.QASeconds,
		PresentedAt:         rec.PresentedAt.UTC().Format(timestampLayout),
	}
}

// PresentationHandler handles presentation record endpoints.
type PresentationHandler struct {
	records presentation.Repository
}

// NewPresentationHandler creates a new PresentationHandler.
func NewPresentationHandler(records presentation.Repository) *PresentationHandler {
	return &PresentationHandler{records: records}
}

// Create handles POST /api/teams/{teamId}/presentation.
func (h *PresentationHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(w, r, "teamId")
	if !ok {
		return
	}

	var req validation.PresentationRequest
	if !decodeBody(w, r, &req, nil) {
		return
	}

	rec := &presentation.Record{
		TeamID:              teamID,
		PresentationSeconds: *req.PresentationSeconds,
		QASeconds:           *req.QASeconds,
	}

	if err := h.records.Create(r.Context(), identity.AccountID, rec); err != nil {
		switch {
		case errors.Is(err, team.ErrTeamNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
		case errors.Is(err, presentation.ErrNegativeDuration):
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Durations must be non-negative", requestID)
		default:
			internalError(w, r, "Failed to record presentation", err, "teamId", teamID)
		}
		return
	}

	response.Success(w, http.StatusCreated, map[string]any{"record": toRecordResponse(rec)}, requestID)
}

// List handles GET /api/teams/{teamId}/presentations.
func (h *PresentationHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(w, r, "teamId")
	if !ok {
		return
	}

	recs, err := h.records.ListByTeam(r.Context(), identity.AccountID, teamID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		internalError(w, r, "Failed to list presentations", err, "teamId", teamID)
		return
	}

	items := make([]recordResponse, 0, len(recs))
	for i := range recs {
		items = append(items, toRecordResponse(&recs[i]))
	}

	response.Success(w, http.StatusOK, map[string]any{"records": items}, requestID)
}
