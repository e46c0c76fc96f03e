// Package router wires the HTTP routes and global middleware.
package router

import (
	"lotsawa/internal/handler"
	"lotsawa/internal/middleware"
	"lotsawa/internal/types"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with global middleware and all routes.
func NewRouter(serverHandler *handler.Server, configManager types.ConfigManager) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger(configManager.GetLogConfig()))
	router.Use(middleware.CORS(configManager.GetCORSConfig()))

	router.GET("/health", serverHandler.Health)

	api := router.Group("/api")
	{
		jobs := api.Group("/jobs")
		{
			jobs.POST("", serverHandler.CreateJob)
			jobs.GET("", serverHandler.ListJobs)
			jobs.GET("/:id", serverHandler.GetJob)
			jobs.POST("/:id/cancel", serverHandler.CancelJob)
			jobs.POST("/:id/retry", serverHandler.RetryJob)
		}
	}

	return router
}
