package main

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/handlers"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/internal/storage"
	"github.com/taskhive/taskhive/internal/utils"
	"github.com/taskhive/taskhive/pkg/logger"
)

// logRetentionDays is how long audit rows are kept before the nightly
// cleanup removes them.
const logRetentionDays = 30

// appServices holds the initialized services and handlers the router needs.
type appServices struct {
	store      storage.FileStore
	taskQueue  services.TaskQueue
	worker     *services.Worker
	logCleaner *cron.Cron

	authHandler       *handlers.AuthHandler
	projectHandler    *handlers.ProjectHandler
	memberHandler     *handlers.ProjectMemberHandler
	profileHandler    *handlers.ProfileHandler
	taskHandler       *handlers.TaskHandler
	attachmentHandler *handlers.AttachmentHandler
	systemLogHandler  *handlers.SystemLogHandler
	healthHandler     *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, storage,
// queue, schedulers and handlers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	services.InitSystemLogger(models.GetDB())
	logCleaner := services.StartLogCleanupScheduler(models.GetDB(), logRetentionDays)

	store, err := storage.NewLocalStore(cfg.Storage.Dir)
	if err != nil {
		logger.Fatalf("Failed to open attachment store: %v", err)
	}

	// Queue uses Redis if enabled, otherwise falls back to in-process
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(func(ctx context.Context, task *services.CleanupTask) error {
			return services.RemoveStoredFiles(store, task)
		})
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis, store)
		if worker != nil {
			worker.Start()
		}
	}

	db := models.GetDB()
	return &appServices{
		store:      store,
		taskQueue:  taskQueue,
		worker:     worker,
		logCleaner: logCleaner,

		authHandler:       handlers.NewAuthHandler(db, cfg),
		projectHandler:    handlers.NewProjectHandler(db, taskQueue),
		memberHandler:     handlers.NewProjectMemberHandler(db),
		profileHandler:    handlers.NewProfileHandler(db),
		taskHandler:       handlers.NewTaskHandler(db, taskQueue),
		attachmentHandler: handlers.NewAttachmentHandler(db, store),
		systemLogHandler:  handlers.NewSystemLogHandler(db),
		healthHandler:     handlers.NewHealthHandler(),
	}
}

// shutdown gracefully stops the background machinery.
func (s *appServices) shutdown() {
	if s.logCleaner != nil {
		s.logCleaner.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("Shutdown complete")
}
