// Package app provides the application lifecycle: migration, background
// services, the HTTP server, and graceful shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lotsawa/internal/httpclient"
	"lotsawa/internal/models"
	"lotsawa/internal/pipeline"
	"lotsawa/internal/services"
	"lotsawa/internal/store"
	"lotsawa/internal/types"
	"lotsawa/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"
	"gorm.io/gorm"
)

// App holds all services and manages the application lifecycle.
type App struct {
	engine            *gin.Engine
	configManager     types.ConfigManager
	queue             *pipeline.Queue
	retention         *services.RetentionService
	httpClientManager *httpclient.Manager
	storage           store.Store
	db                *gorm.DB
	httpServer        *http.Server
}

// AppParams defines the dependencies for the App.
type AppParams struct {
	dig.In
	Engine            *gin.Engine
	ConfigManager     types.ConfigManager
	Queue             *pipeline.Queue
	Retention         *services.RetentionService
	HTTPClientManager *httpclient.Manager
	Storage           store.Store
	DB                *gorm.DB
}

// NewApp is the constructor for App, with dependencies injected by dig.
func NewApp(params AppParams) *App {
	return &App{
		engine:            params.Engine,
		configManager:     params.ConfigManager,
		queue:             params.Queue,
		retention:         params.Retention,
		httpClientManager: params.HTTPClientManager,
		storage:           params.Storage,
		db:                params.DB,
	}
}

// Start runs the application. It is a non-blocking call.
func (a *App) Start() error {
	if err := a.db.AutoMigrate(&models.Job{}, &models.ArchivedJob{}); err != nil {
		return fmt.Errorf("database auto-migration failed: %w", err)
	}
	logrus.Info("Database auto-migration completed.")

	a.queue.Start()
	if err := a.retention.Start(); err != nil {
		return fmt.Errorf("failed to start retention sweeper: %w", err)
	}

	a.configManager.DisplayServerConfig()

	serverConfig := a.configManager.GetEffectiveServerConfig()
	a.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
		Handler:        a.engine,
		ReadTimeout:    time.Duration(serverConfig.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(serverConfig.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(serverConfig.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Infof("Lotsawa translation pipeline started, version %s", version.Version)
		logrus.Infof("Server address: http://%s:%d", serverConfig.Host, serverConfig.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server startup failed: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the application: HTTP first so no new jobs
// arrive, then the queue drain, then the remaining services.
func (a *App) Stop(ctx context.Context) {
	logrus.Info("Shutting down server...")

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			logrus.WithError(err).Warn("HTTP server graceful shutdown timed out, forcing close")
			if closeErr := a.httpServer.Close(); closeErr != nil {
				logrus.Errorf("Error forcing HTTP server to close: %v", closeErr)
			}
		} else {
			logrus.Info("HTTP server has been shut down.")
		}
	}

	a.queue.Stop(ctx)
	a.retention.Stop(ctx)

	a.httpClientManager.CloseIdleConnections()
	if err := a.storage.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close store")
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	logrus.Info("Shutdown complete.")
}
