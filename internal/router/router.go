package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vigil-dev/vigil/internal/handlers"
	"github.com/vigil-dev/vigil/internal/middleware"
	"github.com/vigil-dev/vigil/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:workspace_id", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		// Job reporting, authenticated by workspace API key
		report := api.Group("/report", middleware.APIKeyMiddleware())
		{
			report.POST("/monitors/:monitor_id/jobs", handlers.StartJob)
			report.POST("/monitors/:monitor_id/jobs/:job_id/finish", handlers.FinishJob)
		}

		workspaces := api.Group("/workspaces", middleware.AuthMiddleware())
		{
			workspaces.POST("", handlers.CreateWorkspace)
			workspaces.GET("", handlers.ListWorkspaces)
			workspaces.PATCH("/:workspace_id", handlers.UpdateWorkspace)
			workspaces.DELETE("/:workspace_id", handlers.DeleteWorkspace)

			// Monitor endpoints
			workspaces.POST("/:workspace_id/monitors", handlers.CreateMonitor)
			workspaces.GET("/:workspace_id/monitors", handlers.GetMonitors)
			workspaces.GET("/:workspace_id/monitors/:monitor_id", handlers.GetMonitor)
			workspaces.PUT("/:workspace_id/monitors/:monitor_id", handlers.UpdateMonitor)
			workspaces.DELETE("/:workspace_id/monitors/:monitor_id", handlers.DeleteMonitor)

			// Monitor <-> alert config associations
			workspaces.POST("/:workspace_id/monitors/:monitor_id/alert-configs", handlers.AssociateAlertConfigs)
			workspaces.DELETE("/:workspace_id/monitors/:monitor_id/alert-configs/:alert_config_id", handlers.DisassociateAlertConfig)

			// Alert config endpoints
			workspaces.POST("/:workspace_id/alert-configs", handlers.CreateAlertConfig)
			workspaces.GET("/:workspace_id/alert-configs", handlers.ListAlertConfigs)
			workspaces.PUT("/:workspace_id/alert-configs/:alert_config_id", handlers.UpdateAlertConfig)
			workspaces.DELETE("/:workspace_id/alert-configs/:alert_config_id", handlers.DeleteAlertConfig)
			workspaces.POST("/:workspace_id/alert-configs/:alert_config_id/test", handlers.TestAlertConfig)
		}
	}

	return r
}
