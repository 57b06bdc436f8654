package handler

import (
	"errors"
	"net/http"

	"github.com/daap14/nextup/internal/api/middleware"
	"github.com/daap14/nextup/internal/api/response"
	"github.com/daap14/nextup/internal/api/validation"
	"github.com/daap14/nextup/internal/auth"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(a *auth.Account) userResponse {
	return userResponse{
		ID:        a.ID.String(),
		Email:     a.Email,
		CreatedAt: a.CreatedAt.UTC().Format(timestampLayout),
	}
}

// AuthHandler handles registration, login and identity endpoints.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req validation.RegisterRequest
	if !decodeBody(w, r, &req, func() { req.Email = auth.NormalizeEmail(req.Email) }) {
		return
	}

	a, token, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			response.Err(w, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists", requestID)
			return
		}
		if errors.Is(err, auth.ErrPasswordTooLong) {
			fe := validation.FieldError{Field: "password", Message: "password must be at most 72 bytes"}
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", fe.Message, []validation.FieldError{fe}, requestID)
			return
		}
		internalError(w, r, "Failed to register account", err)
		return
	}

	response.Success(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(a)}, requestID)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req validation.LoginRequest
	if !decodeBody(w, r, &req, func() { req.Email = auth.NormalizeEmail(req.Email) }) {
		return
	}

	a, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", requestID)
			return
		}
		internalError(w, r, "Failed to log in", err)
		return
	}

	response.Success(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(a)}, requestID)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Account(r.Context(), identity)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		internalError(w, r, "Failed to load user", err, "accountId", identity.AccountID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(a), requestID)
}
