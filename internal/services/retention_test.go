package services

import (
	"path/filepath"
	"testing"
	"time"

	"lotsawa/internal/config"
	"lotsawa/internal/models"
	"lotsawa/internal/types"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRetentionDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "jobs.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Job{}, &models.ArchivedJob{}))
	return db
}

func insertAgedJob(t *testing.T, db *gorm.DB, status string, ageDays int) string {
	t.Helper()
	job := models.Job{
		ID:        uuid.NewString(),
		Type:      models.JobTypeTranslation,
		Status:    status,
		Request:   []byte(`{}`),
		CreatedAt: time.Now().AddDate(0, 0, -ageDays),
	}
	require.NoError(t, db.Create(&job).Error)
	return job.ID
}

func retentionConfig(maxAgeDays int) *config.MockConfig {
	return &config.MockConfig{
		RetentionValue: &types.RetentionConfig{
			CronSpec:   "0 * * * *",
			MaxAgeDays: maxAgeDays,
		},
	}
}

func TestSweepArchivesOldTerminalJobs(t *testing.T) {
	db := setupRetentionDB(t)
	oldCompleted := insertAgedJob(t, db, models.JobStatusCompleted, 40)
	oldFailed := insertAgedJob(t, db, models.JobStatusFailed, 40)
	oldCancelled := insertAgedJob(t, db, models.JobStatusCancelled, 40)

	svc := NewRetentionService(db, retentionConfig(30))
	moved, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, int64(3), moved)

	var hot int64
	require.NoError(t, db.Model(&models.Job{}).Count(&hot).Error)
	assert.Zero(t, hot)

	var archived []models.ArchivedJob
	require.NoError(t, db.Find(&archived).Error)
	require.Len(t, archived, 3)
	ids := map[string]bool{}
	for _, a := range archived {
		ids[a.ID] = true
		assert.False(t, a.ArchivedAt.IsZero())
	}
	assert.True(t, ids[oldCompleted])
	assert.True(t, ids[oldFailed])
	assert.True(t, ids[oldCancelled])
}

func TestSweepLeavesRecentAndActiveJobs(t *testing.T) {
	db := setupRetentionDB(t)
	recent := insertAgedJob(t, db, models.JobStatusCompleted, 5)
	oldPending := insertAgedJob(t, db, models.JobStatusPending, 40)
	oldProcessing := insertAgedJob(t, db, models.JobStatusProcessing, 40)
	oldDone := insertAgedJob(t, db, models.JobStatusCompleted, 40)

	svc := NewRetentionService(db, retentionConfig(30))
	moved, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	var remaining []models.Job
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 3)
	left := map[string]bool{}
	for _, j := range remaining {
		left[j.ID] = true
	}
	assert.True(t, left[recent], "recent terminal jobs stay")
	assert.True(t, left[oldPending], "pending jobs are never archived")
	assert.True(t, left[oldProcessing], "processing jobs are never archived")
	assert.False(t, left[oldDone])
}

func TestSweepDisabledByZeroMaxAge(t *testing.T) {
	db := setupRetentionDB(t)
	insertAgedJob(t, db, models.JobStatusCompleted, 400)

	svc := NewRetentionService(db, retentionConfig(0))
	moved, err := svc.Sweep()
	require.NoError(t, err)
	assert.Zero(t, moved)

	var hot int64
	require.NoError(t, db.Model(&models.Job{}).Count(&hot).Error)
	assert.Equal(t, int64(1), hot)
}

func TestSweepPreservesRowContents(t *testing.T) {
	db := setupRetentionDB(t)
	now := time.Now().AddDate(0, 0, -40)
	done := now.Add(time.Minute)
	job := models.Job{
		ID:          uuid.NewString(),
		Type:        models.JobTypeTranslation,
		Status:      models.JobStatusFailed,
		Request:     []byte(`{"version":1}`),
		Error:       "all providers failed",
		Progress:    75,
		CreatedAt:   now,
		StartedAt:   &now,
		CompletedAt: &done,
	}
	require.NoError(t, db.Create(&job).Error)

	svc := NewRetentionService(db, retentionConfig(30))
	_, err := svc.Sweep()
	require.NoError(t, err)

	var archived models.ArchivedJob
	require.NoError(t, db.First(&archived, "id = ?", job.ID).Error)
	assert.Equal(t, job.Status, archived.Status)
	assert.JSONEq(t, `{"version":1}`, string(archived.Request))
	assert.Equal(t, job.Error, archived.Error)
	assert.Equal(t, job.Progress, archived.Progress)
	require.NotNil(t, archived.CompletedAt)
}

func TestStartRejectsBadCronSpec(t *testing.T) {
	db := setupRetentionDB(t)
	svc := NewRetentionService(db, &config.MockConfig{
		RetentionValue: &types.RetentionConfig{CronSpec: "not a cron", MaxAgeDays: 30},
	})
	assert.Error(t, svc.Start())
}

func TestStartNoopWhenDisabled(t *testing.T) {
	db := setupRetentionDB(t)
	svc := NewRetentionService(db, retentionConfig(0))
	assert.NoError(t, svc.Start())
}
