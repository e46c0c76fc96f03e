package commands

import (
	"path/filepath"
	"testing"

	"lotsawa/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrateCreatesTables(t *testing.T) {
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "jobs.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(database))

	assert.True(t, database.Migrator().HasTable(&models.Job{}))
	assert.True(t, database.Migrator().HasTable(&models.ArchivedJob{}))

	// Idempotent on re-run.
	assert.NoError(t, Migrate(database))
}
