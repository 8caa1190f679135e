// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/atiaron/taskflow/config"
	"github.com/atiaron/taskflow/internal/api"
	"github.com/atiaron/taskflow/internal/database"
	"github.com/atiaron/taskflow/internal/llm"
	"github.com/atiaron/taskflow/internal/logger"
	"github.com/atiaron/taskflow/internal/notify"
	"github.com/atiaron/taskflow/internal/services"
	"github.com/atiaron/taskflow/internal/session"
	"github.com/atiaron/taskflow/internal/tts"
)

func main() {
	log := logger.New()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("failed to load config")
		os.Exit(1)
	}
	logger.SetGlobalLevel(logger.LogLevel(cfg.Log.Level))

	loc, err := cfg.Gamification.Location()
	if err != nil {
		log.WithError(err).Error("invalid gamification timezone")
		os.Exit(1)
	}

	db, err := database.NewDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.WithError(err).Error("failed to initialize database")
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := notify.NewHub(cfg.Server.AllowedOrigins...)
	go hub.Run()
	defer hub.Stop()

	notifier := notificationSink(ctx, cfg, hub)

	reminders := services.NewReminderScheduler(notifier,
		services.WithReminderLead(time.Duration(cfg.Notifications.ReminderMinutes)*time.Minute))
	defer reminders.Stop()

	taskService := services.NewTaskService(db, services.WithReminders(reminders))
	pending, err := taskService.PendingTasks(ctx)
	if err != nil {
		log.WithError(err).Error("failed to load pending tasks")
		os.Exit(1)
	}
	reminders.ScheduleAll(pending)
	interactionService := services.NewInteractionService(db)
	achievements := services.NewAchievementRepository(db)

	engine := services.NewAchievementEngine(achievements, achievements, notifier, services.WithLocation(loc))
	unlocks, err := engine.LoadState(ctx)
	if err != nil {
		log.WithError(err).Error("failed to restore achievements")
		os.Exit(1)
	}

	analyzer := services.NewBehaviorAnalyzer(services.WithAnalyzerLocation(loc))
	memory := services.NewPatternMemory()

	var chat *services.ChatService
	model, err := llm.NewLLMClient(cfg)
	if err != nil {
		log.WithError(err).Warn("assistant disabled")
	} else {
		if err := model.IsModelAvailable(ctx); err != nil {
			log.WithError(err).Warn("assistant model not reachable yet")
		}
		chat = services.NewChatService(model, taskService, interactionService, engine, analyzer, memory, unlocks)
	}

	r := mux.NewRouter()
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	api.RegisterRoutes(apiRouter, api.Deps{
		Tasks:        taskService,
		Interactions: interactionService,
		Engine:       engine,
		Unlocks:      unlocks,
		Analyzer:     analyzer,
		Memory:       memory,
		Chat:         chat,
		Actions:      services.NewNotificationActions(taskService, notifier, reminders),
		Sessions:     session.NewStore(cfg.Session.Secret),
		Hub:          hub,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: c.Handler(r),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("taskflow server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Driver),
		zap.String("timezone", loc.String()),
		zap.Int("reminders", len(pending)))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server failed")
		os.Exit(1)
	}
}

// notificationSink builds the notifier chain: websocket clients and the log,
// optionally with spoken audio attached.
func notificationSink(ctx context.Context, cfg *config.Config, hub *notify.Hub) notify.Notifier {
	var sink notify.Notifier = notify.Multi{hub, notify.NewLogNotifier()}
	if !cfg.Notifications.Speech.Enabled {
		return sink
	}

	speech, err := tts.New(ctx, cfg.Tts.Type, cfg.Tts.CredentialsFile)
	if err != nil {
		logger.New().WithError(err).Warn("speech notifications disabled")
		return sink
	}
	return notify.NewSpeechSink(sink, speech, cfg.Notifications.Speech.Voice)
}
