package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daap14/nextup/internal/api/middleware"
	"github.com/daap14/nextup/internal/api/response"
	"github.com/daap14/nextup/internal/api/validation"
	"github.com/daap14/nextup/internal/auth"
)

const maxBodyBytes = 1 << 20

// timestampLayout is used for every timestamp in JSON responses.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// decodeBody reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue. normalize, if
// set, runs between decoding and validation.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, normalize func()) bool {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "Request body must be valid JSON"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			msg = "Field " + typeErr.Field + " has the wrong type"
		} else if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", msg, requestID)
		return false
	}

	if normalize != nil {
		normalize()
	}

	if fieldErrors := validation.Struct(dst); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", fieldErrors[0].Message, fieldErrors, requestID)
		return false
	}

	return true
}

// requireIdentity returns the authenticated identity or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return identity, true
}

// teamIDParam parses a UUID path parameter. Malformed ids cannot name an
// existing team, so they are answered with 404.
func teamIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", middleware.GetRequestID(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}

// internalError logs err with the request logger and writes a 500 carrying
// msg.
func internalError(w http.ResponseWriter, r *http.Request, msg string, err error, args ...any) {
	middleware.Logger(r.Context()).Error(msg, append([]any{"error", err}, args...)...)
	response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", msg, middleware.GetRequestID(r.Context()))
}
