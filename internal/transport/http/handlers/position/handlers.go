package positionhandler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/domain/position"
	"clubhouse/internal/transport/http/api"
	"clubhouse/internal/transport/http/middleware"
)

type Handler struct {
	Store *position.Store
}

func NewHandler(store *position.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/position", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleList)
		r.Get("/{positionID}/credit-rates", h.handleListRates)
		r.Post("/credit-rates", h.handleCreateRate)
		r.Delete("/credit-rates/{rateID}", h.handleDeleteRate)
		r.Get("/credit-rates/sanity-check", h.handleSanityCheck)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	positions, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "position_list_failed", "failed to list positions", reqID)
		return
	}
	api.Success(w, positions, reqID)
}

func (h *Handler) handleListRates(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", reqID)
		return
	}

	positionID, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid position id", reqID)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_year", "year query parameter is required", reqID)
		return
	}

	rates, err := h.Store.RatesForYearPosition(r.Context(), year, positionID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rates_failed", "failed to list credit rates", reqID)
		return
	}
	api.Success(w, rates, reqID)
}

type ratePayload struct {
	PositionID     int64   `json:"position_id"`
	CreditsPerHour float64 `json:"credits_per_hour"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Description    string  `json:"description"`
}

func parseRateTime(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (h *Handler) handleCreateRate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", reqID)
		return
	}

	var payload ratePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	start, err := parseRateTime(payload.StartTime)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_window", "invalid start_time", reqID)
		return
	}
	end, err := parseRateTime(payload.EndTime)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_window", "invalid end_time", reqID)
		return
	}
	if !end.After(start) {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_window", "end_time must be after start_time", reqID)
		return
	}
	if start.Year() != end.Year() {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_window", "rate window must not span calendar years", reqID)
		return
	}

	rate := position.CreditRate{
		PositionID:     payload.PositionID,
		CreditsPerHour: payload.CreditsPerHour,
		StartTime:      start,
		EndTime:        end,
		Description:    payload.Description,
	}
	id, err := h.Store.CreateCreditRate(r.Context(), rate)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rate_create_failed", "failed to create credit rate", reqID)
		return
	}
	rate.ID = id
	api.Created(w, rate, reqID)
}

func (h *Handler) handleDeleteRate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", reqID)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "rateID"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid rate id", reqID)
		return
	}
	if err := h.Store.DeleteCreditRate(r.Context(), id); err != nil {
		api.Fail(w, http.StatusInternalServerError, "rate_delete_failed", "failed to delete credit rate", reqID)
		return
	}
	api.Success(w, map[string]any{"id": id, "deleted": true}, reqID)
}

func (h *Handler) handleSanityCheck(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", reqID)
		return
	}

	rates, err := h.Store.AllRates(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rates_failed", "failed to load credit rates", reqID)
		return
	}
	issues := position.CheckCreditRates(rates)
	api.Success(w, map[string]any{"issues": issues, "checked": len(rates)}, reqID)
}
