package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/insight-api/internal/config"
	"github.com/phrazzld/insight-api/internal/enrichment"
	"github.com/phrazzld/insight-api/internal/events"
	"github.com/phrazzld/insight-api/internal/platform/gemini"
	"github.com/phrazzld/insight-api/internal/platform/postgres"
	"github.com/phrazzld/insight-api/internal/service"
	"github.com/phrazzld/insight-api/internal/service/auth"
	"github.com/phrazzld/insight-api/internal/store"
	"github.com/phrazzld/insight-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore    store.UserStore
	contentStore store.ContentStore
	taskStore    task.TaskStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	enricher         enrichment.Enricher
	userService      service.UserService
	contentService   service.ContentService

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized, the task runner started, and crash recovery performed.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost)
	app.contentStore = postgres.NewPostgresContentStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	app.enricher, err = gemini.NewGeminiEnricher(
		ctx,
		logger.With("component", "llm_enricher"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM enricher: %w", err)
	}
	logger.Info("LLM enricher initialized", "model", cfg.LLM.ModelName)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	app.userService = service.NewUserService(
		app.userStore,
		app.passwordVerifier,
		db,
		logger,
	)

	contentService := service.NewContentService(
		app.contentStore,
		app.eventEmitter,
		db,
		cfg.LLM.MaxInputLength,
		logger,
	)
	app.contentService = contentService

	// The factory rebuilds enrichment tasks both for fresh submissions
	// and for journal rows recovered after a crash. The content service
	// doubles as the enrichment writer so terminal-state and ownership
	// rules apply to background updates too.
	taskFactory := task.NewContentEnrichmentTaskFactory(
		app.contentStore,
		app.enricher,
		contentService,
		logger,
	)

	app.taskRunner, err = setupTaskRunner(app, taskFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	taskFactoryHandler := task.NewTaskFactoryEventHandler(
		taskFactory,
		app.taskRunner,
		logger,
	)

	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(taskFactoryHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupTaskRunner initializes and starts the background task processor.
// The factory must be registered before Start so recovered journal rows
// can be rebuilt into executable tasks.
func setupTaskRunner(
	app *application,
	factory *task.ContentEnrichmentTaskFactory,
) (*task.TaskRunner, error) {
	taskRunner := task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    app.config.Task.QueueSize,
		WorkerCount:  app.config.Task.WorkerCount,
		StuckTaskAge: time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)

	taskRunner.RegisterFactory(task.TaskTypeContentEnrichment, factory)

	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
