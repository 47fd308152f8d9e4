package personhandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/domain/person"
	"clubhouse/internal/transport/http/api"
	"clubhouse/internal/transport/http/middleware"
)

type Handler struct {
	Store *person.Store
}

func NewHandler(store *person.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/person", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleSearch)
		r.Get("/{personID}", h.handleGet)
		r.Put("/{personID}/status", h.handleUpdateStatus)
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	query := r.URL.Query().Get("query")
	limit := 25
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	people, err := h.Store.Search(r.Context(), query, limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "person_search_failed", "failed to search people", reqID)
		return
	}

	viewer := person.Viewer{PersonID: user.PersonID, Admin: user.Admin}
	views := make([]map[string]any, 0, len(people))
	for _, p := range people {
		views = append(views, person.View(p, viewer))
	}
	api.Success(w, views, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid person id", reqID)
		return
	}

	p, err := h.Store.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "person_not_found", "person not found", reqID)
		return
	}

	viewer := person.Viewer{PersonID: user.PersonID, Admin: user.Admin}
	api.Success(w, person.View(p, viewer), reqID)
}

type statusPayload struct {
	Status string `json:"status"`
}

var validStatuses = map[string]bool{
	person.StatusActive:            true,
	person.StatusAlpha:             true,
	person.StatusAuditor:           true,
	person.StatusBonked:            true,
	person.StatusDeceased:          true,
	person.StatusDismissed:         true,
	person.StatusInactive:          true,
	person.StatusInactiveExtension: true,
	person.StatusNonRanger:         true,
	person.StatusPastProspective:   true,
	person.StatusProspective:       true,
	person.StatusResigned:          true,
	person.StatusRetired:           true,
	person.StatusSuspended:         true,
	person.StatusUberbonked:        true,
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", reqID)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid person id", reqID)
		return
	}

	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if !validStatuses[payload.Status] {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_status", "unknown status", reqID)
		return
	}

	if err := h.Store.UpdateStatus(r.Context(), id, payload.Status); err != nil {
		api.Fail(w, http.StatusInternalServerError, "status_update_failed", "failed to update status", reqID)
		return
	}
	api.Success(w, map[string]any{"id": id, "status": payload.Status}, reqID)
}
