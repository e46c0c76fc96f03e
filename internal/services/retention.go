// Package services holds background services that run beside the job
// pipeline. Currently that is the retention sweeper, which archives old
// terminal jobs out of the hot table.
package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"lotsawa/internal/models"
	"lotsawa/internal/types"
	"lotsawa/internal/utils"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// sweepBatchSize bounds how many rows one transaction moves, keeping
	// sqlite write locks short.
	sweepBatchSize = 500

	// lockRetries is how often a batch is retried on lock contention.
	lockRetries = 3
)

var terminalStatuses = []string{
	models.JobStatusCompleted,
	models.JobStatusFailed,
	models.JobStatusCancelled,
}

// RetentionService archives terminal jobs older than the configured age
// into the archived_jobs table on a cron schedule. A max age of zero
// disables sweeping entirely.
type RetentionService struct {
	db            *gorm.DB
	configManager types.ConfigManager
	cron          *cron.Cron
}

// NewRetentionService creates the retention sweeper.
func NewRetentionService(db *gorm.DB, configManager types.ConfigManager) *RetentionService {
	return &RetentionService{
		db:            db,
		configManager: configManager,
		cron:          cron.New(),
	}
}

// Start schedules the sweeper. It is a no-op when retention is disabled.
func (s *RetentionService) Start() error {
	cfg := s.configManager.GetRetentionConfig()
	if cfg.MaxAgeDays <= 0 {
		logrus.Debug("Job retention is disabled (max_age_days <= 0)")
		return nil
	}

	if _, err := s.cron.AddFunc(cfg.CronSpec, func() {
		if _, err := s.Sweep(); err != nil {
			logrus.WithError(err).Error("Retention sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid retention cron spec %q: %w", cfg.CronSpec, err)
	}

	s.cron.Start()
	logrus.WithFields(logrus.Fields{
		"cron":         cfg.CronSpec,
		"max_age_days": cfg.MaxAgeDays,
	}).Info("Retention sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish, bounded
// by ctx.
func (s *RetentionService) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		logrus.Info("Retention sweeper stopped")
	case <-ctx.Done():
		logrus.Warn("Retention sweeper stop timed out")
	}
}

// Sweep moves all terminal jobs older than the configured age into the
// archive table, batch by batch, and returns the number of rows archived.
func (s *RetentionService) Sweep() (int64, error) {
	cfg := s.configManager.GetRetentionConfig()
	if cfg.MaxAgeDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -cfg.MaxAgeDays)

	var total int64
	for {
		moved, err := s.sweepBatch(cutoff)
		if err != nil {
			return total, err
		}
		total += moved
		if moved < sweepBatchSize {
			break
		}
	}

	if total > 0 {
		logrus.WithFields(logrus.Fields{
			"archived": total,
			"cutoff":   cutoff.Format(time.RFC3339),
		}).Info("Retention sweep archived jobs")
	}
	return total, nil
}

// sweepBatch archives one batch inside a transaction: copy to
// archived_jobs, then delete from the hot table. Lock contention is
// retried with jittered backoff.
func (s *RetentionService) sweepBatch(cutoff time.Time) (int64, error) {
	var lastErr error
	for attempt := 0; attempt <= lockRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<attempt))*time.Millisecond +
				time.Duration(rand.Intn(100))*time.Millisecond
			logrus.WithError(lastErr).WithField("attempt", attempt).Debug("Retrying retention batch after lock contention")
			time.Sleep(backoff)
		}

		moved, err := s.moveBatch(cutoff)
		if err == nil {
			return moved, nil
		}
		if !utils.IsDBLockError(err) {
			return 0, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("retention batch failed after %d lock retries: %w", lockRetries, lastErr)
}

func (s *RetentionService) moveBatch(cutoff time.Time) (int64, error) {
	var moved int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var jobs []models.Job
		if err := tx.
			Where("status IN ?", terminalStatuses).
			Where("created_at < ?", cutoff).
			Order("created_at ASC").
			Limit(sweepBatchSize).
			Find(&jobs).Error; err != nil {
			return fmt.Errorf("failed to select jobs for archival: %w", err)
		}
		if len(jobs) == 0 {
			return nil
		}

		now := time.Now()
		archived := make([]models.ArchivedJob, len(jobs))
		ids := make([]string, len(jobs))
		for i, job := range jobs {
			archived[i] = models.ArchivedJob{
				ID:          job.ID,
				Type:        job.Type,
				Status:      job.Status,
				Request:     job.Request,
				Result:      job.Result,
				Error:       job.Error,
				Progress:    job.Progress,
				CreatedAt:   job.CreatedAt,
				StartedAt:   job.StartedAt,
				CompletedAt: job.CompletedAt,
				CancelledAt: job.CancelledAt,
				ArchivedAt:  now,
			}
			ids[i] = job.ID
		}

		if err := tx.Create(&archived).Error; err != nil {
			return fmt.Errorf("failed to insert archived jobs: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Job{}).Error; err != nil {
			return fmt.Errorf("failed to delete archived jobs from hot table: %w", err)
		}
		moved = int64(len(jobs))
		return nil
	})
	return moved, err
}
