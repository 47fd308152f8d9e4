package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/config"
	"clubhouse/internal/db"
	"clubhouse/internal/domain/auth"
	"clubhouse/internal/domain/mail"
	"clubhouse/internal/domain/payroll"
	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/position"
	"clubhouse/internal/domain/timesheet"
	"clubhouse/internal/domain/training"
	"clubhouse/internal/platform/email"
	"clubhouse/internal/platform/metrics"
	authhandler "clubhouse/internal/transport/http/handlers/auth"
	mailhandler "clubhouse/internal/transport/http/handlers/mail"
	payrollhandler "clubhouse/internal/transport/http/handlers/payroll"
	personhandler "clubhouse/internal/transport/http/handlers/person"
	positionhandler "clubhouse/internal/transport/http/handlers/position"
	timesheethandler "clubhouse/internal/transport/http/handlers/timesheet"
	traininghandler "clubhouse/internal/transport/http/handlers/training"
	"clubhouse/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	personStore := person.NewStore(pool)
	positionStore := position.NewStore(pool)
	timesheetStore := timesheet.NewStore(pool)
	trainingStore := training.NewStore(pool)
	mailStore := mail.NewStore(pool)
	authStore := auth.NewStore(pool)

	resolver := payroll.NewCreditResolver(payroll.NewRateCache(), positionStore)
	builder := payroll.NewReportBuilder(timesheetStore)
	outbox := mail.NewOutbox(email.New(cfg), mailStore)

	var lms *training.MoodleClient
	if cfg.MoodleBaseURL != "" {
		lms = training.NewMoodleClient(cfg.MoodleBaseURL, cfg.MoodleToken)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret).RegisterRoutes(r)
		personhandler.NewHandler(personStore).RegisterRoutes(r)
		positionhandler.NewHandler(positionStore).RegisterRoutes(r)
		timesheethandler.NewHandler(timesheetStore).RegisterRoutes(r)
		payrollhandler.NewHandler(builder, resolver).RegisterRoutes(r)
		traininghandler.NewHandler(cfg, trainingStore, personStore, timesheetStore, lms, outbox).RegisterRoutes(r)
		mailhandler.NewHandler(mailStore, mail.NewService(mailStore)).RegisterRoutes(r)
	})

	log.Printf("clubhouse server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
