package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"lotsawa/internal/encryption"
	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/models"
	"lotsawa/internal/store"
	"lotsawa/internal/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// eventsChannel is the pub/sub channel carrying job lifecycle events.
const eventsChannel = "jobs:events"

// schedulerInterval is the fallback scan cadence; freed slots refill
// immediately through the wake channel without waiting for a tick.
const schedulerInterval = time.Second

// JobStatusInfo is the queue's external view of one job.
type JobStatusInfo struct {
	ID          string                   `json:"id"`
	Status      string                   `json:"status"`
	Progress    int                      `json:"progress"`
	CreatedAt   time.Time                `json:"createdAt"`
	StartedAt   *time.Time               `json:"startedAt,omitempty"`
	CompletedAt *time.Time               `json:"completedAt,omitempty"`
	CancelledAt *time.Time               `json:"cancelledAt,omitempty"`
	Error       string                   `json:"error,omitempty"`
	Result      *models.ResultEnvelope   `json:"result,omitempty"`
	Snapshot    *models.ProgressSnapshot `json:"snapshot,omitempty"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Status string
	Limit  int
}

// Queue is the durable FIFO job scheduler. The jobs table is the single
// source of truth; the queue promotes pending rows into worker
// goroutines, at most maxConcurrent at a time.
type Queue struct {
	db         *gorm.DB
	worker     *Worker
	tracker    *ProgressTracker
	eventStore store.Store
	encryption encryption.Service

	maxConcurrent int

	mu      sync.Mutex
	active  map[string]struct{}
	stopped bool

	wg       sync.WaitGroup
	stopChan chan struct{}
	wakeChan chan struct{}
}

// NewQueue creates the queue and recovers interrupted work: `processing`
// rows left behind by a crash are reset to `pending` and re-run from the
// first chunk.
func NewQueue(db *gorm.DB, worker *Worker, tracker *ProgressTracker, eventStore store.Store, enc encryption.Service, cfg types.PipelineConfig) (*Queue, error) {
	q := &Queue{
		db:            db,
		worker:        worker,
		tracker:       tracker,
		eventStore:    eventStore,
		encryption:    enc,
		maxConcurrent: cfg.MaxConcurrentJobs,
		active:        make(map[string]struct{}),
		stopChan:      make(chan struct{}),
		wakeChan:      make(chan struct{}, 1),
	}
	if q.maxConcurrent < 1 {
		q.maxConcurrent = 1
	}

	result := db.Model(&models.Job{}).
		Where("status = ?", models.JobStatusProcessing).
		Updates(map[string]any{
			"status":     models.JobStatusPending,
			"progress":   0,
			"started_at": nil,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to recover interrupted jobs: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		logrus.WithField("count", result.RowsAffected).Info("Recovered interrupted jobs back to pending")
	}

	return q, nil
}

// Start launches the scheduler loop.
func (q *Queue) Start() {
	go q.run()
}

func (q *Queue) run() {
	ticker := time.NewTicker(schedulerInterval)
	defer ticker.Stop()

	q.promote()
	for {
		select {
		case <-q.stopChan:
			return
		case <-ticker.C:
			q.promote()
		case <-q.wakeChan:
			q.promote()
		}
	}
}

// promote claims up to maxConcurrent-active pending jobs FIFO and spawns
// a worker goroutine per claim. Claims happen under the scheduler mutex
// so each job is owned by exactly one goroutine.
func (q *Queue) promote() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	free := q.maxConcurrent - len(q.active)
	if free <= 0 {
		return
	}

	var jobs []models.Job
	if err := q.db.
		Where("status = ?", models.JobStatusPending).
		Order("created_at ASC").
		Limit(free + len(q.active)).
		Find(&jobs).Error; err != nil {
		logrus.WithError(err).Error("Failed to scan pending jobs")
		return
	}

	for i := range jobs {
		if free == 0 {
			break
		}
		job := jobs[i]
		if _, claimed := q.active[job.ID]; claimed {
			continue
		}
		q.active[job.ID] = struct{}{}
		free--

		q.wg.Add(1)
		go q.runJob(job)
	}
}

func (q *Queue) runJob(job models.Job) {
	defer func() {
		q.mu.Lock()
		delete(q.active, job.ID)
		q.mu.Unlock()
		q.wg.Done()
		q.wake()
	}()

	q.publishEvent("started", job.ID)
	logrus.WithField("job_id", job.ID).Info("Job started")

	if err := q.worker.ProcessWithRetry(context.Background(), &job); err != nil {
		if errors.Is(err, errJobSuperseded) {
			logrus.WithField("job_id", job.ID).Debug("Job left pending before the claim, nothing to run")
			return
		}
		logrus.WithError(err).WithField("job_id", job.ID).Warn("Job failed")
		q.publishEvent("failed", job.ID)
		return
	}
	logrus.WithField("job_id", job.ID).Info("Job completed")
	q.publishEvent("completed", job.ID)
}

func (q *Queue) wake() {
	select {
	case q.wakeChan <- struct{}{}:
	default:
	}
}

// Enqueue persists a new pending translation job and returns its ID.
func (q *Queue) Enqueue(ctx context.Context, request models.TranslationRequest) (string, error) {
	encoded, err := models.EncodeRequest(request, q.encryption)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	job := models.Job{
		ID:        uuid.NewString(),
		Type:      models.JobTypeTranslation,
		Status:    models.JobStatusPending,
		Request:   encoded,
		CreatedAt: time.Now(),
	}
	if err := q.db.WithContext(ctx).Create(&job).Error; err != nil {
		return "", app_errors.ParseDBError(err)
	}

	q.publishEvent("enqueued", job.ID)
	q.wake()
	return job.ID, nil
}

// GetStatus returns a job's current state, including the live progress
// snapshot while it is processing.
func (q *Queue) GetStatus(ctx context.Context, jobID string) (*JobStatusInfo, error) {
	job, err := q.load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	info := &JobStatusInfo{
		ID:          job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		CancelledAt: job.CancelledAt,
		Error:       job.Error,
	}

	if len(job.Result) > 0 {
		envelope, err := models.DecodeResult(job.Result, q.encryption)
		if err != nil {
			return nil, fmt.Errorf("failed to decode job result: %w", err)
		}
		info.Result = &envelope
	}

	if job.Status == models.JobStatusProcessing {
		if snapshot, err := q.tracker.Get(job.ID); err == nil {
			info.Snapshot = snapshot
		}
	}
	return info, nil
}

// Cancel cancels a pending job. Cancelling an already-cancelled job is a
// no-op; any other status cannot be cancelled.
func (q *Queue) Cancel(ctx context.Context, jobID string) error {
	job, err := q.load(ctx, jobID)
	if err != nil {
		return err
	}

	if job.Status == models.JobStatusCancelled {
		return nil
	}
	if !models.CanTransition(job.Status, models.JobStatusCancelled) {
		return app_errors.NewAPIError(app_errors.ErrJobNotCancellable, fmt.Sprintf("cannot cancel job in status %q", job.Status))
	}

	now := time.Now()
	result := q.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", jobID, job.Status).
		Updates(map[string]any{
			"status":       models.JobStatusCancelled,
			"cancelled_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to cancel job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost the race with the scheduler.
		return app_errors.NewAPIError(app_errors.ErrJobNotCancellable, "cannot cancel job: it already started")
	}

	q.publishEvent("cancelled", jobID)
	return nil
}

// Retry re-queues a failed job, resetting its error, result, progress
// and timestamps.
func (q *Queue) Retry(ctx context.Context, jobID string) error {
	job, err := q.load(ctx, jobID)
	if err != nil {
		return err
	}
	if !models.CanTransition(job.Status, models.JobStatusPending) {
		return app_errors.NewAPIError(app_errors.ErrJobNotRetryable, fmt.Sprintf("cannot retry job in status %q", job.Status))
	}

	if err := q.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", jobID, models.JobStatusFailed).
		Updates(map[string]any{
			"status":       models.JobStatusPending,
			"error":        "",
			"result":       nil,
			"progress":     0,
			"started_at":   nil,
			"completed_at": nil,
		}).Error; err != nil {
		return fmt.Errorf("failed to retry job: %w", err)
	}

	q.publishEvent("enqueued", jobID)
	q.wake()
	return nil
}

// List returns jobs newest-first, optionally filtered by status.
func (q *Queue) List(ctx context.Context, filter ListFilter) ([]JobStatusInfo, error) {
	query := q.db.WithContext(ctx).Model(&models.Job{}).Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var jobs []models.Job
	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	infos := make([]JobStatusInfo, len(jobs))
	for i, job := range jobs {
		infos[i] = JobStatusInfo{
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
	return infos, nil
}

// Stop refuses new promotions and waits for active workers to drain,
// bounded by ctx. Jobs still in flight at the deadline are logged and
// abandoned; crash recovery resets them on the next start.
func (q *Queue) Stop(ctx context.Context) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.mu.Unlock()
	close(q.stopChan)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("Job queue drained")
	case <-ctx.Done():
		q.mu.Lock()
		remaining := make([]string, 0, len(q.active))
		for id := range q.active {
			remaining = append(remaining, id)
		}
		q.mu.Unlock()
		logrus.WithField("jobs", remaining).Warn("Job queue shutdown timed out with jobs in flight")
	}
}

func (q *Queue) load(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := q.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_errors.NewAPIError(app_errors.ErrJobNotFound, fmt.Sprintf("job %s not found", jobID))
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return &job, nil
}

func (q *Queue) publishEvent(event, jobID string) {
	payload, err := json.Marshal(map[string]string{
		"event": event,
		"jobId": jobID,
	})
	if err != nil {
		return
	}
	if err := q.eventStore.Publish(eventsChannel, payload); err != nil {
		logrus.WithError(err).WithField("event", event).Debug("Failed to publish job event")
	}
}
