package main

import (
	"context"

	"github.com/freelancehub/pmcopilot/backend/internal/config"
	"github.com/freelancehub/pmcopilot/backend/internal/handlers"
	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/internal/utils"
	"github.com/freelancehub/pmcopilot/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg             *config.Config
	storage         *services.StorageService
	pipeline        *services.AnalysisPipeline
	reminderService *services.ReminderService
	taskQueue       services.TaskQueue
	worker          *services.Worker
	authHandler     *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// Object storage for contract PDFs. Optional: without it PDF uploads
	// are rejected but the rest of the API still works.
	var storage *services.StorageService
	if cfg.Storage.Endpoint != "" {
		var err error
		storage, err = services.NewStorageService(&cfg.Storage)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize object storage, PDF uploads disabled")
			storage = nil
		} else if err := storage.EnsureBucket(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Failed to ensure storage bucket")
		}
	}

	// Analysis pipeline: provider + task queue (uses Redis if enabled,
	// otherwise sync mode)
	provider := services.NewAnalysisProvider(&cfg.Analyzer)
	pipeline := services.NewAnalysisPipeline(models.GetDB(), provider)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(pipeline.Process)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(pipeline.Process)
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start analysis worker")
			}
		}
	}

	// Start payment reminder scheduler
	reminderService := services.NewReminderService(models.GetDB(), &cfg.Reminders)
	reminderService.StartScheduler()

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:             cfg,
		storage:         storage,
		pipeline:        pipeline,
		reminderService: reminderService,
		taskQueue:       taskQueue,
		worker:          worker,
		authHandler:     authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.reminderService.StopScheduler()
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
