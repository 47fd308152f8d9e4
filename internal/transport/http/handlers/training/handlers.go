package traininghandler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/config"
	"clubhouse/internal/domain/mail"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/timesheet"
	"clubhouse/internal/domain/training"
	"clubhouse/internal/transport/http/api"
	"clubhouse/internal/transport/http/middleware"
)

type Handler struct {
	Cfg        config.Config
	Store      *training.Store
	People     *person.Store
	Timesheets *timesheet.Store
	LMS        *training.MoodleClient
	Outbox     *mail.Outbox
}

func NewHandler(cfg config.Config, store *training.Store, people *person.Store, timesheets *timesheet.Store, lms *training.MoodleClient, outbox *mail.Outbox) *Handler {
	return &Handler{Cfg: cfg, Store: store, People: people, Timesheets: timesheets, LMS: lms, Outbox: outbox}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/online-training", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleListCompletions)
		r.Post("/{personID}/enroll", h.handleEnroll)
		r.Post("/{personID}/complete", h.handleMarkCompleted)
	})
}

func (h *Handler) handleListCompletions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", reqID)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_year", "year query parameter is required", reqID)
		return
	}
	var personID int64
	if v := r.URL.Query().Get("person_id"); v != "" {
		personID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			api.Fail(w, http.StatusUnprocessableEntity, "invalid_person", "invalid person_id", reqID)
			return
		}
	}

	completions, err := h.Store.FindForYear(r.Context(), year, personID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "training_list_failed", "failed to list completions", reqID)
		return
	}
	api.Success(w, completions, reqID)
}

// handleEnroll provisions an LMS account for the person if one does not
// exist, stores the account id, and enrolls them in the course matching
// their tier. New accounts get their credentials emailed.
func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", reqID)
		return
	}
	if h.LMS == nil {
		api.Fail(w, http.StatusServiceUnavailable, "lms_not_configured", "online training is not configured", reqID)
		return
	}

	personID, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid person id", reqID)
		return
	}
	p, err := h.People.Get(r.Context(), personID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "person_not_found", "person not found", reqID)
		return
	}

	years, err := h.Timesheets.FindYears(r.Context(), personID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "enroll_failed", "failed to look up worked years", reqID)
		return
	}

	tier := training.CourseTier(p.Status, len(years), h.Cfg.FullCourseForVets)
	courseID := h.Cfg.MoodleFullCourseID
	if tier == training.CourseHalf {
		courseID = h.Cfg.MoodleHalfCourseID
	}

	lmsID := p.LMSID
	created := false
	if lmsID == "" {
		var found bool
		lmsID, found, err = h.LMS.FindUser(r.Context(), p.Email)
		if err != nil {
			h.failLMS(w, reqID, err)
			return
		}
		if !found {
			password, err := generatePassword()
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "enroll_failed", "failed to generate credentials", reqID)
				return
			}
			lmsID, err = h.LMS.CreateUser(r.Context(), p, password)
			if err != nil {
				h.failLMS(w, reqID, err)
				return
			}
			created = true
			body := fmt.Sprintf("An online training account has been created for %s.\n\nUsername: %s\nPassword: %s\n", p.Callsign, p.Callsign, password)
			if err := h.Outbox.Send(r.Context(), &personID, h.Cfg.EmailFrom, p.Email, "Online training account created", body); err != nil {
				// Account exists either way; the password can be reset in the LMS.
				api.Fail(w, http.StatusInternalServerError, "mail_failed", "account created but credential email failed", reqID)
				return
			}
		}
		if err := h.People.UpdateLMSID(r.Context(), personID, lmsID); err != nil {
			api.Fail(w, http.StatusInternalServerError, "enroll_failed", "failed to store lms account id", reqID)
			return
		}
	}

	if err := h.LMS.EnrollUser(r.Context(), lmsID, courseID); err != nil {
		h.failLMS(w, reqID, err)
		return
	}

	api.Success(w, map[string]any{
		"person_id":       personID,
		"lms_id":          lmsID,
		"course_type":     tier,
		"course_id":       courseID,
		"account_created": created,
	}, reqID)
}

func (h *Handler) failLMS(w http.ResponseWriter, reqID string, err error) {
	if errors.Is(err, training.ErrDownForMaintenance) {
		api.Fail(w, http.StatusServiceUnavailable, "lms_maintenance", "the lms is down for maintenance", reqID)
		return
	}
	api.Fail(w, http.StatusBadGateway, "lms_failed", err.Error(), reqID)
}

func generatePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	// Suffix keeps the LMS password policy happy.
	return hex.EncodeToString(buf) + "!5", nil
}

type completionPayload struct {
	CourseType  string `json:"course_type"`
	CompletedAt string `json:"completed_at"`
}

func (h *Handler) handleMarkCompleted(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.Admin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", reqID)
		return
	}

	personID, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid person id", reqID)
		return
	}

	var payload completionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.CourseType != training.CourseFull && payload.CourseType != training.CourseHalf {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_course", "course_type must be full or half", reqID)
		return
	}
	completedAt := time.Now().UTC()
	if payload.CompletedAt != "" {
		completedAt, err = time.Parse(time.RFC3339, payload.CompletedAt)
		if err != nil {
			api.Fail(w, http.StatusUnprocessableEntity, "invalid_timestamp", "completed_at must be RFC 3339", reqID)
			return
		}
	}

	id, err := h.Store.MarkCompleted(r.Context(), personID, payload.CourseType, completedAt)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "training_record_failed", "failed to record completion", reqID)
		return
	}
	api.Created(w, map[string]any{"id": id, "person_id": personID, "course_type": payload.CourseType}, reqID)
}
