package main

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential guessing on the public auth routes
	authLimiter := middleware.NewRateLimiter(10, 20)

	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		protected.Use(middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/password", svc.authHandler.ChangePassword)

			// Projects
			protected.POST("/projects", svc.projectHandler.Create)
			protected.GET("/projects", svc.projectHandler.List)
			protected.POST("/projects/join", authLimiter.Middleware(), svc.projectHandler.Join)
			protected.GET("/projects/:id", svc.projectHandler.Get)
			protected.PUT("/projects/:id", svc.projectHandler.Rename)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)

			// Members
			protected.GET("/projects/:id/members", svc.memberHandler.List)
			protected.GET("/projects/:id/members/eligible", svc.memberHandler.EligibleTargets)
			protected.GET("/projects/:id/members/levels", svc.memberHandler.AssignableLevels)
			protected.PUT("/projects/:id/members/level", svc.memberHandler.BulkChangeLevel)
			protected.DELETE("/projects/:id/members", svc.memberHandler.BulkRemove)
			protected.PUT("/projects/:id/members/:userId/level", svc.memberHandler.ChangeLevel)
			protected.DELETE("/projects/:id/members/:userId", svc.memberHandler.Remove)
			protected.POST("/projects/:id/leave", svc.memberHandler.Leave)

			// Per-project profiles
			protected.GET("/projects/:id/profile", svc.profileHandler.GetMine)
			protected.PUT("/projects/:id/profile", svc.profileHandler.Update)
			protected.GET("/projects/:id/members/:userId/profile", svc.profileHandler.Get)

			// Tasks
			protected.POST("/projects/:id/tasks", svc.taskHandler.Create)
			protected.GET("/projects/:id/tasks", svc.taskHandler.List)
			protected.GET("/projects/:id/tasks/:taskId", svc.taskHandler.Get)
			protected.PUT("/projects/:id/tasks/:taskId", svc.taskHandler.Update)
			protected.PUT("/projects/:id/tasks/:taskId/status", svc.taskHandler.ChangeStatus)
			protected.DELETE("/projects/:id/tasks/:taskId", svc.taskHandler.Delete)

			// Attachments
			protected.POST("/projects/:id/attachments", svc.attachmentHandler.Upload)
			protected.GET("/projects/:id/attachments", svc.attachmentHandler.List)
			protected.GET("/projects/:id/attachments/:attachmentId", svc.attachmentHandler.Download)
			protected.DELETE("/projects/:id/attachments/:attachmentId", svc.attachmentHandler.Delete)

			// System logs
			protected.GET("/system-logs", svc.systemLogHandler.List)
		}
	}
}
