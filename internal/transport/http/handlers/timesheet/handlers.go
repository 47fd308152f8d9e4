package timesheethandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/domain/timesheet"
	"clubhouse/internal/transport/http/api"
	"clubhouse/internal/transport/http/middleware"
)

type Handler struct {
	Store *timesheet.Store
}

func NewHandler(store *timesheet.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timesheet", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleList)
		r.Get("/years/{personID}", h.handleYears)
	})
}

type shiftView struct {
	ID            int64      `json:"id"`
	PersonID      int64      `json:"person_id"`
	PositionID    int64      `json:"position_id"`
	PositionTitle string     `json:"position_title"`
	OnDuty        time.Time  `json:"on_duty"`
	OffDuty       *time.Time `json:"off_duty"`
	ReviewStatus  string     `json:"review_status"`
	Verified      bool       `json:"verified"`
}

func toView(s timesheet.Shift) shiftView {
	return shiftView{
		ID:            s.ID,
		PersonID:      s.PersonID,
		PositionID:    s.PositionID,
		PositionTitle: s.Position.Title,
		OnDuty:        s.OnDuty,
		OffDuty:       s.OffDuty,
		ReviewStatus:  s.ReviewStatus,
		Verified:      s.Verified(),
	}
}

// handleList returns one person's shifts for a year. Non-admins may only
// see their own.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	q := r.URL.Query()
	personID, err := strconv.ParseInt(q.Get("person_id"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_person", "person_id query parameter is required", reqID)
		return
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_year", "year query parameter is required", reqID)
		return
	}
	if personID != user.PersonID && !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "may only view your own timesheets", reqID)
		return
	}

	shifts, err := h.Store.ListForPersonYear(r.Context(), personID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timesheet_list_failed", "failed to list shifts", reqID)
		return
	}
	views := make([]shiftView, 0, len(shifts))
	for _, s := range shifts {
		views = append(views, toView(s))
	}
	api.Success(w, views, reqID)
}

func (h *Handler) handleYears(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	personID, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid person id", reqID)
		return
	}
	if personID != user.PersonID && !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "may only view your own timesheets", reqID)
		return
	}

	years, err := h.Store.FindYears(r.Context(), personID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timesheet_years_failed", "failed to list worked years", reqID)
		return
	}
	api.Success(w, years, reqID)
}
