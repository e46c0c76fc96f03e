package types

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetCORSConfig() CORSConfig
	GetLogConfig() LogConfig
	GetDatabaseConfig() DatabaseConfig
	GetRedisDSN() string
	GetEncryptionKey() string
	GetEffectiveServerConfig() ServerConfig
	GetPipelineConfig() PipelineConfig
	GetProviderConfig() ProviderConfig
	GetRetentionConfig() RetentionConfig
	Validate() error
	DisplayServerConfig()
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port                    int    `json:"port"`
	Host                    string `json:"host"`
	ReadTimeout             int    `json:"read_timeout"`
	WriteTimeout            int    `json:"write_timeout"`
	IdleTimeout             int    `json:"idle_timeout"`
	GracefulShutdownTimeout int    `json:"graceful_shutdown_timeout"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	EnableFile bool   `json:"enable_file"`
	FilePath   string `json:"file_path"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// PipelineConfig holds the scheduling and retry parameters of the job pipeline.
type PipelineConfig struct {
	MaxConcurrentJobs int    `json:"max_concurrent_jobs"`
	MaxRetries        int    `json:"max_retries"`
	RetryBaseDelayMs  int    `json:"retry_base_delay_ms"`
	ChunkSizeChars    int    `json:"chunk_size_chars"`
	TargetLanguage    string `json:"target_language"`
}

// ProviderConfig holds translation and embedding provider settings.
type ProviderConfig struct {
	Providers       []string `json:"providers"`
	TimeoutSeconds  int      `json:"timeout_seconds"`
	OpenAIAPIKey    string   `json:"-"`
	OpenAIBaseURL   string   `json:"openai_base_url"`
	OpenAIModel     string   `json:"openai_model"`
	EmbeddingModel  string   `json:"embedding_model"`
	GoogleAPIKey    string   `json:"-"`
	GoogleCredsFile string   `json:"google_creds_file"`
}

// RetentionConfig controls archival of terminal jobs.
type RetentionConfig struct {
	CronSpec   string `json:"cron_spec"`
	MaxAgeDays int    `json:"max_age_days"`
}
