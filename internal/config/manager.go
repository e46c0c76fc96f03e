// Package config provides environment-based configuration management.
package config

import (
	"fmt"
	"os"

	"lotsawa/internal/types"
	"lotsawa/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Manager implements types.ConfigManager backed by environment variables.
type Manager struct {
	config *Config
}

// Config holds all application configuration loaded at startup.
type Config struct {
	Server    types.ServerConfig
	CORS      types.CORSConfig
	Log       types.LogConfig
	Database  types.DatabaseConfig
	RedisDSN  string
	Encryption string
	Pipeline  types.PipelineConfig
	Provider  types.ProviderConfig
	Retention types.RetentionConfig
}

// NewManager creates a configuration manager, loading .env if present.
func NewManager() (types.ConfigManager, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	config := &Config{
		Server: types.ServerConfig{
			Port:                    utils.ParseInteger("PORT", 3001),
			Host:                    utils.ParseString("HOST", "0.0.0.0"),
			ReadTimeout:             utils.ParseInteger("SERVER_READ_TIMEOUT", 60),
			WriteTimeout:            utils.ParseInteger("SERVER_WRITE_TIMEOUT", 600),
			IdleTimeout:             utils.ParseInteger("SERVER_IDLE_TIMEOUT", 120),
			GracefulShutdownTimeout: utils.ParseInteger("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 10),
		},
		CORS: types.CORSConfig{
			Enabled:          utils.ParseBoolean("ENABLE_CORS", true),
			AllowedOrigins:   utils.ParseArray("ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   utils.ParseArray("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   utils.ParseArray("ALLOWED_HEADERS", []string{"*"}),
			AllowCredentials: utils.ParseBoolean("ALLOW_CREDENTIALS", false),
		},
		Log: types.LogConfig{
			Level:      utils.ParseString("LOG_LEVEL", "info"),
			Format:     utils.ParseString("LOG_FORMAT", "text"),
			EnableFile: utils.ParseBoolean("LOG_ENABLE_FILE", false),
			FilePath:   utils.ParseString("LOG_FILE_PATH", "./data/logs/app.log"),
		},
		Database: types.DatabaseConfig{
			DSN: utils.ParseString("DATABASE_DSN", "./data/lotsawa.db"),
		},
		RedisDSN:   os.Getenv("REDIS_DSN"),
		Encryption: os.Getenv("ENCRYPTION_KEY"),
		Pipeline: types.PipelineConfig{
			MaxConcurrentJobs: utils.ParseInteger("MAX_CONCURRENT_JOBS", 3),
			MaxRetries:        utils.ParseInteger("JOB_MAX_RETRIES", 3),
			RetryBaseDelayMs:  utils.ParseInteger("JOB_RETRY_BASE_DELAY_MS", 1000),
			ChunkSizeChars:    utils.ParseInteger("CHUNK_SIZE_CHARS", 4000),
			TargetLanguage:    utils.ParseString("TARGET_LANGUAGE", "en"),
		},
		Provider: types.ProviderConfig{
			Providers:       utils.ParseArray("TRANSLATION_PROVIDERS", []string{"openai"}),
			TimeoutSeconds:  utils.ParseInteger("PROVIDER_TIMEOUT_SECONDS", 120),
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:   utils.ParseString("OPENAI_BASE_URL", "https://api.openai.com"),
			OpenAIModel:     utils.ParseString("OPENAI_MODEL", "gpt-4o"),
			EmbeddingModel:  utils.ParseString("EMBEDDING_MODEL", "text-embedding-3-small"),
			GoogleAPIKey:    os.Getenv("GOOGLE_TRANSLATE_API_KEY"),
			GoogleCredsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Retention: types.RetentionConfig{
			CronSpec:   utils.ParseString("RETENTION_CRON", "0 * * * *"),
			MaxAgeDays: utils.ParseInteger("RETENTION_MAX_AGE_DAYS", 0),
		},
	}

	manager := &Manager{config: config}
	if err := manager.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return manager, nil
}

// Validate checks the configuration for invalid values.
func (m *Manager) Validate() error {
	if m.config.Server.Port < 1 || m.config.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", m.config.Server.Port)
	}
	if m.config.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN cannot be empty")
	}
	if m.config.Pipeline.MaxConcurrentJobs < 1 {
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be at least 1, got %d", m.config.Pipeline.MaxConcurrentJobs)
	}
	if m.config.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("JOB_MAX_RETRIES cannot be negative, got %d", m.config.Pipeline.MaxRetries)
	}
	if m.config.Pipeline.ChunkSizeChars < 1 {
		return fmt.Errorf("CHUNK_SIZE_CHARS must be at least 1, got %d", m.config.Pipeline.ChunkSizeChars)
	}
	if len(m.config.Provider.Providers) == 0 {
		return fmt.Errorf("TRANSLATION_PROVIDERS cannot be empty")
	}
	if m.config.Provider.TimeoutSeconds < 1 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be at least 1, got %d", m.config.Provider.TimeoutSeconds)
	}
	return nil
}

// GetServerConfig returns server configuration.
func (m *Manager) GetServerConfig() types.ServerConfig {
	return m.config.Server
}

// GetEffectiveServerConfig returns the server configuration in effect.
func (m *Manager) GetEffectiveServerConfig() types.ServerConfig {
	return m.config.Server
}

// GetCORSConfig returns CORS configuration.
func (m *Manager) GetCORSConfig() types.CORSConfig {
	return m.config.CORS
}

// GetLogConfig returns logging configuration.
func (m *Manager) GetLogConfig() types.LogConfig {
	return m.config.Log
}

// GetDatabaseConfig returns database configuration.
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig {
	return m.config.Database
}

// GetRedisDSN returns the Redis DSN, empty when the memory store should be used.
func (m *Manager) GetRedisDSN() string {
	return m.config.RedisDSN
}

// GetEncryptionKey returns the at-rest payload encryption key.
func (m *Manager) GetEncryptionKey() string {
	return m.config.Encryption
}

// GetPipelineConfig returns job pipeline configuration.
func (m *Manager) GetPipelineConfig() types.PipelineConfig {
	return m.config.Pipeline
}

// GetProviderConfig returns translation provider configuration.
func (m *Manager) GetProviderConfig() types.ProviderConfig {
	return m.config.Provider
}

// GetRetentionConfig returns job retention configuration.
func (m *Manager) GetRetentionConfig() types.RetentionConfig {
	return m.config.Retention
}

// DisplayServerConfig logs a summary of the effective configuration.
func (m *Manager) DisplayServerConfig() {
	storeType := "memory"
	if m.config.RedisDSN != "" {
		storeType = "redis"
	}
	encryption := "disabled"
	if m.config.Encryption != "" {
		encryption = "enabled"
	}

	logrus.Info("")
	logrus.Info("======= Lotsawa Translation Pipeline =======")
	logrus.Infof("  Listen: %s:%d", m.config.Server.Host, m.config.Server.Port)
	logrus.Infof("  Database: %s", maskDSN(m.config.Database.DSN))
	logrus.Infof("  Store: %s", storeType)
	logrus.Infof("  Encryption at rest: %s", encryption)
	logrus.Infof("  Providers: %v", m.config.Provider.Providers)
	logrus.Infof("  Max concurrent jobs: %d", m.config.Pipeline.MaxConcurrentJobs)
	logrus.Infof("  Job retries: %d (base delay %dms)", m.config.Pipeline.MaxRetries, m.config.Pipeline.RetryBaseDelayMs)
	logrus.Infof("  Target language: %s", m.config.Pipeline.TargetLanguage)
	if m.config.Retention.MaxAgeDays > 0 {
		logrus.Infof("  Retention: archive after %d days (%s)", m.config.Retention.MaxAgeDays, m.config.Retention.CronSpec)
	}
	logrus.Info("============================================")
	logrus.Info("")
}

// maskDSN hides credentials in a DSN for logging.
func maskDSN(dsn string) string {
	if len(dsn) > 64 {
		return dsn[:32] + "..."
	}
	return dsn
}
