package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yukikurage/gestor-tarefas/internal/config"
	"github.com/yukikurage/gestor-tarefas/internal/database"
	"github.com/yukikurage/gestor-tarefas/internal/logger"
	"github.com/yukikurage/gestor-tarefas/internal/mail"
	"github.com/yukikurage/gestor-tarefas/internal/notify"
	"github.com/yukikurage/gestor-tarefas/internal/realtime"
	"github.com/yukikurage/gestor-tarefas/internal/repository"
	"github.com/yukikurage/gestor-tarefas/internal/router"
	"github.com/yukikurage/gestor-tarefas/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(config.EnvLocal, "info", os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.Env, cfg.LogLevel, os.Stdout)
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	created, err := database.SeedDepartments(db, cfg.SeedDepartments)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed departments")
	}
	if created > 0 {
		log.Info().Int("count", created).Msg("departments seeded")
	}

	userRepo := repository.NewUserRepository(db)
	setorRepo := repository.NewSetorRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	hub := realtime.NewHub(log, realtime.OriginChecker(cfg.AllowedOrigins))
	dispatcher := notify.NewDispatcher(hub, notify.DispatcherConfig{
		BufferSize:  cfg.Notify.BufferSize,
		WorkerCount: cfg.Notify.WorkerCount,
	}, log)

	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	defer cancelDispatch()
	dispatcher.Start(dispatchCtx)

	authService := services.NewAuthService(userRepo, setorRepo, mail.NewSender(cfg.Mail, log), log)
	taskService := services.NewTaskService(taskRepo, dispatcher, log)

	if _, err := authService.EnsureAdmin(context.Background(), cfg.Admin); err != nil {
		log.Fatal().Err(err).Msg("failed to create administrator")
	}

	store, err := router.NewSessionStore(cfg.Session, cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session store")
	}

	engine := router.New(router.Deps{
		DB:             db,
		Log:            log,
		SessionStore:   store,
		AllowedOrigins: cfg.AllowedOrigins,
		BaseURL:        cfg.BaseURL,
		AuthService:    authService,
		TaskService:    taskService,
		Hub:            hub,
	})

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: engine,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("env", cfg.Env).
			Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to listen and serve http")
		}
	}()

	waitForShutdown(log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shut down http server")
	}
	hub.Close()
	dispatcher.Stop()
	log.Info().Msg("server stopped")
}

// waitForShutdown blocks until SIGINT or SIGTERM.
func waitForShutdown(log zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("shutting down")
}
