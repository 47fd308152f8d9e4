package payrollhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/domain/auth"
	"clubhouse/internal/domain/payroll"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/position"
	"clubhouse/internal/domain/timesheet"
	"clubhouse/internal/transport/http/middleware"
)

const testSecret = "payroll-handler-test-secret"

type fakeShiftSource struct {
	shifts []timesheet.Shift
}

func (f *fakeShiftSource) ShiftsForPeriod(_ context.Context, _ []int64, _, _ time.Time) ([]timesheet.Shift, error) {
	return f.shifts, nil
}

type fakeRateSource struct {
	batchCalls int
	rates      map[int64][]position.CreditRate
}

func (f *fakeRateSource) RatesForYearPosition(_ context.Context, _ int, positionID int64) ([]position.CreditRate, error) {
	return f.rates[positionID], nil
}

func (f *fakeRateSource) RatesForYearPositions(_ context.Context, _ int, positionIDs []int64) ([]position.CreditRate, error) {
	f.batchCalls++
	var out []position.CreditRate
	for _, id := range positionIDs {
		out = append(out, f.rates[id]...)
	}
	return out, nil
}

func (f *fakeRateSource) RatesForYear(_ context.Context, _ int) ([]position.CreditRate, error) {
	var out []position.CreditRate
	for _, rates := range f.rates {
		out = append(out, rates...)
	}
	return out, nil
}

func newTestRouter(t *testing.T, shifts []timesheet.Shift, rates *fakeRateSource) chi.Router {
	t.Helper()
	builder := payroll.NewReportBuilder(&fakeShiftSource{shifts: shifts})
	resolver := payroll.NewCreditResolver(payroll.NewRateCache(), rates)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(testSecret))
	NewHandler(builder, resolver).RegisterRoutes(router)
	return router
}

func bearerToken(t *testing.T, admin bool) string {
	t.Helper()
	token, err := auth.IssueToken(testSecret, 99, "tester", admin, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func TestReportEndpointRequiresAdmin(t *testing.T) {
	router := newTestRouter(t, nil, &fakeRateSource{})

	body := `{"start":"2024-08-01 00:00:00","end":"2024-09-01 00:00:00"}`
	req := httptest.NewRequest(http.MethodPost, "/payroll/report", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
}

func TestReportEndpointBuildsReport(t *testing.T) {
	offDuty := time.Date(2024, 8, 9, 18, 0, 0, 0, time.UTC)
	shifts := []timesheet.Shift{{
		ID:           7,
		PersonID:     1,
		PositionID:   2,
		OnDuty:       time.Date(2024, 8, 9, 12, 0, 0, 0, time.UTC),
		OffDuty:      &offDuty,
		ReviewStatus: timesheet.ReviewVerified,
		Person:       person.Summary{ID: 1, Callsign: "Hubcap", EmployeeID: "E-1"},
		Position:     position.Summary{ID: 2, Title: "Dirt", Paycode: "DIRT"},
	}}
	router := newTestRouter(t, shifts, &fakeRateSource{})

	body := `{"start":"2024-08-01 00:00:00","end":"2024-09-01 00:00:00","break_after_hours":9,"break_duration_minutes":30}`
	req := httptest.NewRequest(http.MethodPost, "/payroll/report", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, true))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool           `json:"success"`
		Data    payroll.Report `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Fatal("expected success envelope")
	}
	if len(envelope.Data.People) != 1 || envelope.Data.People[0].Callsign != "Hubcap" {
		t.Fatalf("unexpected people grouping: %+v", envelope.Data.People)
	}
	if got := envelope.Data.People[0].Shifts[0].Duration; got != 6*3600 {
		t.Fatalf("expected 6h duration, got %d", got)
	}
}

func TestReportEndpointRejectsBadPeriod(t *testing.T) {
	router := newTestRouter(t, nil, &fakeRateSource{})

	body := `{"start":"2024-09-01 00:00:00","end":"2024-08-01 00:00:00"}`
	req := httptest.NewRequest(http.MethodPost, "/payroll/report", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, true))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for inverted period, got %d", rec.Code)
	}
}

func TestWarmEndpointBatchesByYear(t *testing.T) {
	rates := &fakeRateSource{rates: map[int64][]position.CreditRate{
		2: {{
			ID:             1,
			PositionID:     2,
			CreditsPerHour: 1.5,
			StartTime:      time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
			EndTime:        time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC),
		}},
	}}
	router := newTestRouter(t, nil, rates)

	body := `{"years":{"2024":[2,3]}}`
	req := httptest.NewRequest(http.MethodPost, "/payroll/position-credits/warm", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, true))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rates.batchCalls != 1 {
		t.Fatalf("expected one batched rate query, got %d", rates.batchCalls)
	}
}

func TestCSVExportStreamsReport(t *testing.T) {
	router := newTestRouter(t, nil, &fakeRateSource{})

	req := httptest.NewRequest(http.MethodGet,
		"/payroll/report/export.csv?start=2024-08-01&end=2024-09-01", nil)
	req.Header.Set("Authorization", bearerToken(t, true))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "callsign") {
		t.Fatalf("expected csv header row, got %q", rec.Body.String())
	}
}
