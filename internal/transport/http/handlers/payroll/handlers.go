package payrollhandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/domain/payroll"
	"clubhouse/internal/transport/http/api"
	"clubhouse/internal/transport/http/middleware"
)

type Handler struct {
	Builder  *payroll.ReportBuilder
	Resolver *payroll.CreditResolver
}

func NewHandler(builder *payroll.ReportBuilder, resolver *payroll.CreditResolver) *Handler {
	return &Handler{Builder: builder, Resolver: resolver}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/report", h.handleReport)
		r.Get("/report/export.csv", h.handleExportCSV)
		r.Get("/report/export.pdf", h.handleExportPDF)
		r.Post("/position-credits/warm", h.handleWarmCredits)
		r.Get("/position-credits/rates", h.handleListRates)
		r.Post("/position-credits/compute", h.handleComputeCredits)
	})
}

type reportPayload struct {
	Start                string  `json:"start"`
	End                  string  `json:"end"`
	BreakAfterHours      int     `json:"break_after_hours"`
	BreakDurationMinutes int     `json:"break_duration_minutes"`
	PositionIDs          []int64 `json:"position_ids"`
}

func parseShiftTime(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

func (p reportPayload) toOptions() (payroll.ReportOptions, error) {
	start, err := parseShiftTime(p.Start)
	if err != nil {
		return payroll.ReportOptions{}, err
	}
	end, err := parseShiftTime(p.End)
	if err != nil {
		return payroll.ReportOptions{}, err
	}
	return payroll.ReportOptions{
		Start:                start,
		End:                  end,
		BreakAfterHours:      p.BreakAfterHours,
		BreakDurationMinutes: p.BreakDurationMinutes,
		PositionIDs:          p.PositionIDs,
	}, nil
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	user, ok := middleware.GetUser(r.Context())
	if !ok || !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var payload reportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	opts, err := payload.toOptions()
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Builder.Build(r.Context(), opts)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "report_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) optionsFromQuery(r *http.Request) (payroll.ReportOptions, error) {
	q := r.URL.Query()
	payload := reportPayload{
		Start: q.Get("start"),
		End:   q.Get("end"),
	}
	if v := q.Get("break_after_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return payroll.ReportOptions{}, fmt.Errorf("invalid break_after_hours %q", v)
		}
		payload.BreakAfterHours = n
	}
	if v := q.Get("break_duration_minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return payroll.ReportOptions{}, fmt.Errorf("invalid break_duration_minutes %q", v)
		}
		payload.BreakDurationMinutes = n
	}
	if v := q.Get("position_ids"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return payroll.ReportOptions{}, fmt.Errorf("invalid position id %q", part)
			}
			payload.PositionIDs = append(payload.PositionIDs, id)
		}
	}
	return payload.toOptions()
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	opts, err := h.optionsFromQuery(r)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Builder.Build(r.Context(), opts)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "report_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll-report.csv"`)
	if err := report.WriteCSV(w); err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render csv", middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	opts, err := h.optionsFromQuery(r)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Builder.Build(r.Context(), opts)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "report_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	label := fmt.Sprintf("%s to %s", opts.Start.Format("2006-01-02"), opts.End.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll-report.pdf"`)
	if err := report.WritePDF(w, label); err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render pdf", middleware.GetRequestID(r.Context()))
	}
}

type warmPayload struct {
	Years map[string][]int64 `json:"years"`
}

func (h *Handler) handleWarmCredits(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var payload warmPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	years := make(map[int][]int64, len(payload.Years))
	for key, ids := range payload.Years {
		year, err := strconv.Atoi(key)
		if err != nil {
			api.Fail(w, http.StatusUnprocessableEntity, "invalid_year", fmt.Sprintf("invalid year %q", key), middleware.GetRequestID(r.Context()))
			return
		}
		years[year] = ids
	}
	if err := h.Resolver.WarmBulk(r.Context(), years); err != nil {
		api.Fail(w, http.StatusInternalServerError, "warm_failed", "failed to warm credit rates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"warmed": len(years)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRates(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_year", "year query parameter is required", middleware.GetRequestID(r.Context()))
		return
	}
	positionID, err := strconv.ParseInt(q.Get("position_id"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_position", "position_id query parameter is required", middleware.GetRequestID(r.Context()))
		return
	}
	rates, err := h.Resolver.RatesFor(r.Context(), year, positionID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rates_failed", "failed to load credit rates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rates, middleware.GetRequestID(r.Context()))
}

type computePayload struct {
	PositionID int64  `json:"position_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func (h *Handler) handleComputeCredits(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var payload computePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	start, err := parseShiftTime(payload.Start)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	end, err := parseShiftTime(payload.End)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	credits, err := h.Resolver.ComputeCredits(r.Context(), payload.PositionID, start.Unix(), end.Unix(), start.Year())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "credits_failed", "failed to compute credits", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"credits": credits}, middleware.GetRequestID(r.Context()))
}
