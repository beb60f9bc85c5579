package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/savestreak/backend/internal/config"
	"github.com/savestreak/backend/internal/handler"
	applog "github.com/savestreak/backend/internal/logger"
	"github.com/savestreak/backend/internal/notify"
	"github.com/savestreak/backend/internal/repository"
	"github.com/savestreak/backend/internal/scheduler"
	"github.com/savestreak/backend/internal/service"
)

func main() {
	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.Logger()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	savingRepo := repository.NewSavingRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Notification engine
	prefsStore := notify.NewPreferencesStore(settingsRepo, logger)
	var sinks []notify.Sink
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		sinks = append(sinks, notify.NewWebPushSink(
			notificationRepo, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject, logger,
		))
	} else {
		logger.Warn("VAPID keys not configured, web push delivery disabled")
	}
	engine := notify.NewEngine(notificationRepo, prefsStore, cfg.Cooldown, logger,
		notify.WithSinks(sinks...),
	)

	// Services
	statsService := service.NewStatsService(savingRepo, userRepo)
	milestoneService := service.NewMilestoneService(settingsRepo)
	savingsService := service.NewSavingsService(
		savingRepo, userRepo, challengeRepo, statsService, milestoneService, engine, logger, nil,
	)

	// Recurring notification timers for the active user
	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		activeUserID, err := uuid.Parse(cfg.ActiveUserID)
		if err != nil {
			logger.Warn("ACTIVE_USER_ID missing or invalid, recurring notifications disabled")
		} else {
			sched = scheduler.New(engine, prefsStore, scheduler.Config{
				ReminderHour:    cfg.ReminderHour,
				TipHour:         cfg.TipHour,
				TipIntervalDays: cfg.TipIntervalDays,
			}, activeUserID, logger)
			sched.Start(context.Background())
			logger.Info("scheduler started", "userId", activeUserID)
		}
	}

	onPrefsChange := func(ctx context.Context) {
		if sched != nil {
			sched.RescheduleAll(ctx)
		}
	}
	notificationService := service.NewNotificationService(notificationRepo, prefsStore, onPrefsChange, logger)

	// Nightly streak refresh
	var refresher *scheduler.StreakRefresher
	if cfg.RefreshEnabled {
		refresher = scheduler.NewStreakRefresher(
			savingRepo, statsService, milestoneService, engine, cfg.RefreshSchedule, logger,
		)
		if err := refresher.Start(); err != nil {
			log.Fatalf("Failed to start streak refresher: %v", err)
		}
	}

	// Handlers
	savingsHandler := handler.NewSavingsHandler(savingsService)
	statsHandler := handler.NewStatsHandler(statsService)
	notificationHandler := handler.NewNotificationHandler(notificationService, cfg.VAPIDPublicKey)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(handler.RequestContext)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Savings and stats
	r.Post("/api/users/{userID}/savings", savingsHandler.Record)
	r.Get("/api/users/{userID}/stats", statsHandler.Get)

	// Notifications
	r.Get("/api/users/{userID}/notifications", notificationHandler.List)
	r.Put("/api/users/{userID}/notifications/{id}/read", notificationHandler.MarkRead)
	r.Get("/api/preferences", notificationHandler.GetPreferences)
	r.Put("/api/preferences", notificationHandler.UpdatePreferences)

	// Web push
	r.Get("/api/notifications/vapid-public-key", notificationHandler.GetVAPIDPublicKey)
	r.Post("/api/users/{userID}/push-subscriptions", notificationHandler.Subscribe)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if sched != nil {
		sched.Stop()
	}
	if refresher != nil {
		refresher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
}
