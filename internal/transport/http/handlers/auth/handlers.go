package authhandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/domain/auth"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/transport/http/api"
	"clubhouse/internal/transport/http/middleware"
)

const tokenTTL = 12 * time.Hour

type Handler struct {
	Store     *auth.Store
	JWTSecret string
}

func NewHandler(store *auth.Store, jwtSecret string) *Handler {
	return &Handler{Store: store, JWTSecret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.With(middleware.RequireUser).Put("/auth/password", h.handleSetPassword)
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Statuses that can never log in regardless of password.
var blockedStatuses = map[string]bool{
	person.StatusDeceased:   true,
	person.StatusDismissed:  true,
	person.StatusSuspended:  true,
	person.StatusUberbonked: true,
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and password are required", reqID)
		return
	}

	rec, err := h.Store.FindForLogin(r.Context(), payload.Email)
	if err != nil || !auth.CheckPassword(rec.PasswordHash, payload.Password) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}
	if blockedStatuses[rec.Status] {
		api.Fail(w, http.StatusForbidden, "account_disabled", "account may not log in", reqID)
		return
	}

	token, err := auth.IssueToken(h.JWTSecret, rec.PersonID, rec.Callsign, rec.Admin, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_failed", "failed to issue token", reqID)
		return
	}

	api.Success(w, map[string]any{
		"token":     token,
		"person_id": rec.PersonID,
		"callsign":  rec.Callsign,
		"admin":     rec.Admin,
	}, reqID)
}

type passwordPayload struct {
	PersonID int64  `json:"person_id"`
	Password string `json:"password"`
}

// handleSetPassword lets a person change their own password; admins may
// set anyone's.
func (h *Handler) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload passwordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.PersonID == 0 {
		payload.PersonID = user.PersonID
	}
	if payload.PersonID != user.PersonID && !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "may only change your own password", reqID)
		return
	}
	if len(payload.Password) < 8 {
		api.Fail(w, http.StatusUnprocessableEntity, "weak_password", "password must be at least 8 characters", reqID)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "password_update_failed", "failed to hash password", reqID)
		return
	}
	if err := h.Store.UpdatePassword(r.Context(), payload.PersonID, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "password_update_failed", "failed to update password", reqID)
		return
	}
	api.Success(w, map[string]any{"person_id": payload.PersonID, "updated": true}, reqID)
}
