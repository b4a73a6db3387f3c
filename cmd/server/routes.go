package main

import (
	"github.com/freelancehub/pmcopilot/backend/internal/handlers"
	"github.com/freelancehub/pmcopilot/backend/internal/middleware"
	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for public callback routes
	callbackLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	db := models.GetDB()
	contractHandler := handlers.NewContractHandler(db, svc.storage)
	changeHandler := handlers.NewChangeRequestHandler(db)
	commHandler := handlers.NewCommunicationHandler(db)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// SSE lifecycle events (public route with internal token validation)
		eventsHandler := handlers.NewEventsHandler(services.GetEventHub())
		api.GET("/events/stream", eventsHandler.Stream)

		// Analysis result callbacks and email status webhook (public with
		// rate limiting; external analyzers and mail providers post here)
		callbacks := api.Group("", callbackLimiter.Middleware())
		{
			callbacks.POST("/contracts/:id/analysis", contractHandler.AnalysisCallback)
			callbacks.POST("/changes/:id/analysis", changeHandler.AnalysisCallback)
			callbacks.POST("/communications/status", commHandler.StatusWebhook)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)
			protected.PUT("/auth/profile", svc.authHandler.UpdateProfile)

			// Contracts
			protected.POST("/contracts", contractHandler.Create)
			protected.GET("/contracts", contractHandler.List)
			protected.GET("/contracts/:id", contractHandler.GetByID)
			protected.POST("/contracts/:id/pdf", contractHandler.UploadPDF)
			protected.POST("/contracts/:id/retry", contractHandler.Retry)
			protected.POST("/contracts/:id/activate", contractHandler.Activate)
			protected.POST("/contracts/:id/complete", contractHandler.Complete)
			protected.POST("/contracts/:id/cancel", contractHandler.Cancel)

			// Change requests
			protected.POST("/contracts/:id/changes", changeHandler.Create)
			protected.GET("/contracts/:id/changes", changeHandler.ListByContract)
			protected.GET("/changes/:id", changeHandler.GetByID)
			protected.POST("/changes/:id/decision", changeHandler.Decide)
			protected.POST("/changes/:id/implement", changeHandler.Implement)

			// Plan versions
			planHandler := handlers.NewPlanHandler(db)
			protected.POST("/contracts/:id/plans", planHandler.Create)
			protected.GET("/contracts/:id/plans", planHandler.ListVersions)
			protected.GET("/contracts/:id/plans/:version", planHandler.GetVersion)
			protected.POST("/contracts/:id/plans/:version/supersede", planHandler.Supersede)

			// Payments and reminders
			paymentHandler := handlers.NewPaymentHandler(db, &svc.cfg.Reminders)
			protected.GET("/payments", paymentHandler.List)
			protected.POST("/contracts/:id/payments/:entryId/paid", paymentHandler.MarkPaid)
			protected.POST("/payments/reminders", paymentHandler.SendReminder)
			protected.POST("/payments/reminders/run", paymentHandler.RunReminderSweep)

			// Client communications
			protected.GET("/communications", commHandler.List)
			protected.GET("/communications/templates", commHandler.Templates)
			protected.GET("/communications/:id", commHandler.GetByID)

			// Directory: companies, teams, people, skills, assignments
			directoryHandler := handlers.NewDirectoryHandler(db)
			protected.POST("/companies", directoryHandler.CreateCompany)
			protected.GET("/companies", directoryHandler.ListCompanies)
			protected.POST("/teams", directoryHandler.CreateTeam)
			protected.GET("/teams", directoryHandler.ListTeams)
			protected.POST("/people", directoryHandler.CreatePerson)
			protected.GET("/people", directoryHandler.ListPeople)
			protected.GET("/people/:id", directoryHandler.GetPerson)
			protected.PUT("/people/:id", directoryHandler.UpdatePerson)
			protected.DELETE("/people/:id", directoryHandler.DeletePerson)
			protected.PUT("/people/:id/skills", directoryHandler.SetPersonSkill)
			protected.GET("/skills", directoryHandler.ListSkills)
			protected.POST("/assignments", directoryHandler.CreateAssignment)
			protected.GET("/assignments", directoryHandler.ListAssignments)

			// Capacity dashboard
			dashboardHandler := handlers.NewDashboardHandler(db)
			protected.GET("/dashboard/capacity", dashboardHandler.CapacityHeatmap)
			protected.GET("/dashboard/capacity/teams/:id", dashboardHandler.TeamCapacity)
			protected.GET("/dashboard/capacity/people/:id/recompute", dashboardHandler.RecomputeWorkload)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			settingsHandler := handlers.NewSettingsHandler(db)
			admin.GET("/settings/logs", settingsHandler.ListLogs)
			admin.GET("/settings/:group", settingsHandler.GetGroup)
			admin.PUT("/settings/:group", settingsHandler.SetGroup)
		}
	}
}
