// Package commands implements the CLI subcommands dispatched from main.
package commands

import (
	"fmt"
	"os"

	"lotsawa/internal/config"
	"lotsawa/internal/db"
	"lotsawa/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RunMigrate runs database migrations and exits. It is a one-shot command
// for container init jobs; the server also migrates on startup.
func RunMigrate(args []string) {
	configManager, err := config.NewManager()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.NewDB(configManager)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := Migrate(database); err != nil {
		logrus.Fatalf("Migration failed: %v", err)
	}

	fmt.Println("Migration completed successfully.")
	os.Exit(0)
}

// Migrate creates or updates the jobs and archived_jobs tables.
func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(&models.Job{}, &models.ArchivedJob{})
}
