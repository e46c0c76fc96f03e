package config

import (
	"lotsawa/internal/types"
)

// MockConfig implements types.ConfigManager for testing
type MockConfig struct {
	DSN                string
	RedisDSNValue      string
	EncryptionKeyValue string
	PipelineValue      *types.PipelineConfig
	ProviderValue      *types.ProviderConfig
	RetentionValue     *types.RetentionConfig
}

// GetEffectiveServerConfig returns mock server configuration
func (m *MockConfig) GetEffectiveServerConfig() types.ServerConfig {
	return types.ServerConfig{
		Port:                    3001,
		Host:                    "0.0.0.0",
		ReadTimeout:             60,
		WriteTimeout:            600,
		IdleTimeout:             120,
		GracefulShutdownTimeout: 10,
	}
}

// GetCORSConfig returns mock CORS configuration
func (m *MockConfig) GetCORSConfig() types.CORSConfig {
	return types.CORSConfig{
		Enabled:          false,
		AllowedOrigins:   []string{},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}
}

// GetLogConfig returns mock log configuration
func (m *MockConfig) GetLogConfig() types.LogConfig {
	return types.LogConfig{
		Level:      "info",
		Format:     "text",
		EnableFile: false,
		FilePath:   "./data/logs/app.log",
	}
}

// GetDatabaseConfig returns mock database configuration
func (m *MockConfig) GetDatabaseConfig() types.DatabaseConfig {
	if m.DSN != "" {
		return types.DatabaseConfig{DSN: m.DSN}
	}
	return types.DatabaseConfig{
		DSN: "file::memory:?cache=shared",
	}
}

// GetRedisDSN returns mock Redis DSN
func (m *MockConfig) GetRedisDSN() string {
	return m.RedisDSNValue
}

// GetEncryptionKey returns mock encryption key
func (m *MockConfig) GetEncryptionKey() string {
	return m.EncryptionKeyValue
}

// GetPipelineConfig returns mock pipeline configuration
func (m *MockConfig) GetPipelineConfig() types.PipelineConfig {
	if m.PipelineValue != nil {
		return *m.PipelineValue
	}
	return types.PipelineConfig{
		MaxConcurrentJobs: 2,
		MaxRetries:        1,
		RetryBaseDelayMs:  10,
		ChunkSizeChars:    4000,
		TargetLanguage:    "en",
	}
}

// GetProviderConfig returns mock provider configuration
func (m *MockConfig) GetProviderConfig() types.ProviderConfig {
	if m.ProviderValue != nil {
		return *m.ProviderValue
	}
	return types.ProviderConfig{
		Providers:      []string{"openai"},
		TimeoutSeconds: 5,
		OpenAIAPIKey:   "test-key",
		OpenAIBaseURL:  "http://localhost:0",
		OpenAIModel:    "gpt-4o",
		EmbeddingModel: "text-embedding-3-small",
	}
}

// GetRetentionConfig returns mock retention configuration
func (m *MockConfig) GetRetentionConfig() types.RetentionConfig {
	if m.RetentionValue != nil {
		return *m.RetentionValue
	}
	return types.RetentionConfig{
		CronSpec:   "0 * * * *",
		MaxAgeDays: 0,
	}
}

// Validate validates the configuration
func (m *MockConfig) Validate() error {
	return nil
}

// DisplayServerConfig displays server configuration (no-op for mock)
func (m *MockConfig) DisplayServerConfig() {
	// No-op for testing
}
