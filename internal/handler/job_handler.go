package handler

import (
	"strings"

	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/models"
	"lotsawa/internal/pipeline"
	"lotsawa/internal/response"

	"github.com/gin-gonic/gin"
)

// CreateJob handles POST /api/jobs: it enqueues a translation job and
// returns its ID immediately. All processing happens asynchronously.
func (s *Server) CreateJob(c *gin.Context) {
	var request models.TranslationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}
	if strings.TrimSpace(request.SourceText) == "" {
		response.Error(c, app_errors.NewValidationError("sourceText is required"))
		return
	}

	jobID, err := s.Queue.Enqueue(c.Request.Context(), request)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"jobId": jobID})
}

// ListJobs handles GET /api/jobs with optional ?status= filtering and
// standard page/page_size pagination.
func (s *Server) ListJobs(c *gin.Context) {
	query := s.DB.Model(&models.Job{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var jobs []pipeline.JobStatusInfo
	var rows []models.Job
	result, err := response.Paginate(c, query, &rows)
	if err != nil {
		respondError(c, err)
		return
	}
	jobs = make([]pipeline.JobStatusInfo, len(rows))
	for i, job := range rows {
		jobs[i] = pipeline.JobStatusInfo{
			ID:          job.ID,
			Status:      job.Status,
			Progress:    job.Progress,
			CreatedAt:   job.CreatedAt,
			StartedAt:   job.StartedAt,
			CompletedAt: job.CompletedAt,
			CancelledAt: job.CancelledAt,
			Error:       job.Error,
		}
	}
	result.Items = jobs
	response.Success(c, result)
}

// GetJob handles GET /api/jobs/:id, returning the job's status info plus a
// live progress snapshot while it is processing.
func (s *Server) GetJob(c *gin.Context) {
	info, err := s.Queue.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, info)
}

// CancelJob handles POST /api/jobs/:id/cancel. Only pending jobs can be
// cancelled; cancelling a cancelled job succeeds idempotently.
func (s *Server) CancelJob(c *gin.Context) {
	id := c.Param("id")
	if err := s.Queue.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"jobId": id, "status": models.JobStatusCancelled})
}

// RetryJob handles POST /api/jobs/:id/retry, re-queueing a failed job.
func (s *Server) RetryJob(c *gin.Context) {
	id := c.Param("id")
	if err := s.Queue.Retry(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"jobId": id, "status": models.JobStatusPending})
}
