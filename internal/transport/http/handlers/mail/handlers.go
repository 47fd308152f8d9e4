package mailhandler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/domain/mail"
	"clubhouse/internal/transport/http/api"
	"clubhouse/internal/transport/http/middleware"
)

type Handler struct {
	Store   *mail.Store
	Bounces *mail.Service
}

func NewHandler(store *mail.Store, bounces *mail.Service) *Handler {
	return &Handler{Store: store, Bounces: bounces}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	// The provider webhook authenticates by signature, not bearer token.
	r.Post("/mail-log/sns", h.handleNotification)

	r.Route("/mail-log", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleList)
		r.Get("/stats", h.handleStats)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	q := r.URL.Query()
	query := mail.Query{}
	if v := q.Get("person_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			api.Fail(w, http.StatusUnprocessableEntity, "invalid_person", "invalid person_id", reqID)
			return
		}
		query.PersonID = id
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			api.Fail(w, http.StatusUnprocessableEntity, "invalid_year", "invalid year", reqID)
			return
		}
		query.Year = year
	}
	if v := q.Get("page"); v != "" {
		query.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("page_size"); v != "" {
		query.PageSize, _ = strconv.Atoi(v)
	}

	if !user.Admin {
		// Non-admins only ever see their own mail.
		query.PersonID = user.PersonID
	}

	entries, total, err := h.Store.List(r.Context(), query)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mail_list_failed", "failed to list mail log", reqID)
		return
	}
	api.Success(w, map[string]any{"entries": entries, "total": total}, reqID)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	personID := user.PersonID
	if v := r.URL.Query().Get("person_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			api.Fail(w, http.StatusUnprocessableEntity, "invalid_person", "invalid person_id", reqID)
			return
		}
		if id != user.PersonID && !user.Admin {
			api.Fail(w, http.StatusForbidden, "forbidden", "may only view your own mail stats", reqID)
			return
		}
		personID = id
	}

	stats, err := h.Store.RetrieveStats(r.Context(), personID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mail_stats_failed", "failed to load mail stats", reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) handleNotification(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read notification", reqID)
		return
	}
	if err := h.Bounces.ProcessNotification(r.Context(), body); err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "notification_rejected", err.Error(), reqID)
		return
	}
	api.Success(w, map[string]any{"processed": true}, reqID)
}
