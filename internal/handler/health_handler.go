package handler

import (
	"net/http"
	"time"

	"lotsawa/internal/version"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health. It bypasses the response envelope so
// external probes can parse it without unwrapping.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   version.Version,
		"uptime":    time.Since(s.startTime).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
