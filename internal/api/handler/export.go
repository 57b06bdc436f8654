package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/daap14/nextup/internal/api/middleware"
	"github.com/daap14/nextup/internal/api/response"
	"github.com/daap14/nextup/internal/export"
	"github.com/daap14/nextup/internal/presentation"
	"github.com/daap14/nextup/internal/team"
)

// ExportHandler handles GET /api/export.
type ExportHandler struct {
	teams   team.Repository
	records presentation.Repository
	now     func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(teams team.Repository, records presentation.Repository) *ExportHandler {
	return &ExportHandler{teams: teams, records: records, now: time.Now}
}

// ServeHTTP renders the account's teams and records as ?format=csv (default)
// or ?format=json.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_FORMAT", `format must be "json" or "csv"`, requestID)
		return
	}

	teams, err := h.teams.List(r.Context(), identity.AccountID)
	if err != nil {
		internalError(w, r, "Failed to export data", err)
		return
	}
	byTeam, err := h.records.ListByAccount(r.Context(), identity.AccountID)
	if err != nil {
		internalError(w, r, "Failed to export data", err)
		return
	}
	entries := export.Build(teams, byTeam)

	var buf bytes.Buffer
	if format == export.FormatJSON {
		err = export.WriteJSON(&buf, entries)
	} else {
		err = export.WriteCSV(&buf, entries)
	}
	if err != nil {
		internalError(w, r, "Failed to export data", err)
		return
	}

	filename := fmt.Sprintf("teams-export-%d.%s", h.now().UnixMilli(), format)
	response.Attachment(w, format.ContentType(), filename, buf.Bytes())
}
