// Package handler implements the HTTP surface: job management endpoints
// and the health probe.
package handler

import (
	"errors"
	"time"

	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/pipeline"
	"lotsawa/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Server bundles the dependencies shared by all HTTP handlers.
type Server struct {
	DB    *gorm.DB
	Queue *pipeline.Queue

	startTime time.Time
}

// NewServer creates the handler server.
func NewServer(db *gorm.DB, queue *pipeline.Queue) *Server {
	return &Server{
		DB:        db,
		Queue:     queue,
		startTime: time.Now(),
	}
}

// respondError maps an error to the response envelope, preserving typed
// API errors and wrapping everything else as an internal error.
func respondError(c *gin.Context, err error) {
	var apiErr *app_errors.APIError
	if errors.As(err, &apiErr) {
		response.Error(c, apiErr)
		return
	}
	response.Error(c, app_errors.NewAPIError(app_errors.ErrInternalServer, err.Error()))
}
