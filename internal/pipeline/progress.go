package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"lotsawa/internal/models"
	"lotsawa/internal/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrNotTracked is returned when progress is requested for a job that was
// never initialized or has been cleaned up.
var ErrNotTracked = errors.New("job progress is not tracked")

// progressCacheTTL bounds how long a stale snapshot can linger in the
// store after a crash.
const progressCacheTTL = 10 * time.Minute

type jobProgress struct {
	chunksTotal     int
	chunksCompleted int
	startedAt       time.Time
}

// ProgressTracker tracks per-job chunk progress while a job is active.
// Snapshots are mirrored best-effort into the jobs table and the store
// cache; persistence failures are logged and swallowed.
type ProgressTracker struct {
	db    *gorm.DB
	cache store.Store

	mu   sync.Mutex
	jobs map[string]*jobProgress
}

// NewProgressTracker creates a progress tracker.
func NewProgressTracker(db *gorm.DB, cache store.Store) *ProgressTracker {
	return &ProgressTracker{
		db:    db,
		cache: cache,
		jobs:  make(map[string]*jobProgress),
	}
}

// Init starts tracking a job with the given chunk count.
func (t *ProgressTracker) Init(jobID string, totalChunks int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[jobID] = &jobProgress{
		chunksTotal: totalChunks,
		startedAt:   time.Now(),
	}
}

// Update records the number of completed chunks, clamped to the total,
// and persists the derived progress best-effort.
func (t *ProgressTracker) Update(jobID string, chunksCompleted int) error {
	t.mu.Lock()
	state, ok := t.jobs[jobID]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotTracked, jobID)
	}
	if chunksCompleted < 0 {
		chunksCompleted = 0
	}
	if chunksCompleted > state.chunksTotal {
		chunksCompleted = state.chunksTotal
	}
	state.chunksCompleted = chunksCompleted
	snapshot := snapshotLocked(state)
	t.mu.Unlock()

	t.persist(jobID, snapshot)
	return nil
}

// Get returns the current snapshot for an active job.
func (t *ProgressTracker) Get(jobID string) (*models.ProgressSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotTracked, jobID)
	}
	snapshot := snapshotLocked(state)
	return &snapshot, nil
}

// Reset zeroes a job's completed count and restarts its clock.
func (t *ProgressTracker) Reset(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.jobs[jobID]; ok {
		state.chunksCompleted = 0
		state.startedAt = time.Now()
	}
}

// Cleanup stops tracking a job and drops its cached snapshot.
func (t *ProgressTracker) Cleanup(jobID string) {
	t.mu.Lock()
	delete(t.jobs, jobID)
	t.mu.Unlock()

	if err := t.cache.Delete(progressCacheKey(jobID)); err != nil {
		logrus.WithError(err).WithField("job_id", jobID).Debug("Failed to drop cached progress snapshot")
	}
}

func snapshotLocked(state *jobProgress) models.ProgressSnapshot {
	snapshot := models.ProgressSnapshot{
		ChunksCompleted: state.chunksCompleted,
		ChunksTotal:     state.chunksTotal,
	}
	if state.chunksTotal > 0 {
		snapshot.Progress = state.chunksCompleted * 100 / state.chunksTotal
	}

	elapsedMs := time.Since(state.startedAt).Milliseconds()
	if state.chunksCompleted > 0 && elapsedMs > 0 {
		avgPerChunk := elapsedMs / int64(state.chunksCompleted)
		remaining := int64(state.chunksTotal - state.chunksCompleted)
		eta := avgPerChunk * remaining
		snapshot.EstimatedTimeRemaining = &eta
		snapshot.Throughput = float64(state.chunksCompleted) / float64(elapsedMs) * 60000
	}
	return snapshot
}

// persist writes the progress column and mirrors the snapshot into the
// store cache. Both are best-effort.
func (t *ProgressTracker) persist(jobID string, snapshot models.ProgressSnapshot) {
	if err := t.db.Model(&models.Job{}).Where("id = ?", jobID).
		Update("progress", snapshot.Progress).Error; err != nil {
		logrus.WithError(err).WithField("job_id", jobID).Warn("Failed to persist job progress")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		logrus.WithError(err).WithField("job_id", jobID).Warn("Failed to marshal progress snapshot")
		return
	}
	if err := t.cache.Set(progressCacheKey(jobID), payload, progressCacheTTL); err != nil {
		logrus.WithError(err).WithField("job_id", jobID).Debug("Failed to cache progress snapshot")
	}
}

func progressCacheKey(jobID string) string {
	return "jobs:progress:" + jobID
}
