package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Redis  RedisConfig  `mapstructure:"redis"  validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm"    validate:"required"`
	Worker WorkerConfig `mapstructure:"worker" validate:"required"`
}

// ServerConfig contains all intake API server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// UploadDir is where uploaded menu images are staged before the worker
	// consumes (and deletes) them. Server and worker must share it.
	UploadDir string `mapstructure:"upload_dir" validate:"required"`
}

// RedisConfig contains connection settings for the shared state store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"   validate:"gte=0"`
}

// LLMConfig contains the completion capability settings. The model and
// sampling parameters are fixed here, not varied per job.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName         string `mapstructure:"model_name"     validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"        validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`

	// Per-million-token pricing, informational only. Logged alongside token
	// usage after each call; never enforced as a budget.
	InputPricePerMTok  float64 `mapstructure:"input_price_per_mtok"  validate:"gte=0"`
	OutputPricePerMTok float64 `mapstructure:"output_price_per_mtok" validate:"gte=0"`
}

// WorkerConfig contains the dispatcher and pipeline settings.
type WorkerConfig struct {
	// Concurrency caps the number of jobs processed at once.
	// Zero means unbounded, matching the original thread-per-job behavior.
	Concurrency int `mapstructure:"concurrency" validate:"gte=0"`

	// PollIntervalSeconds is how often a waiting job re-reads the store for
	// user preferences.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`

	// PreferencesTimeoutMinutes bounds the wait for user preferences; a job
	// that exceeds it is marked abandoned instead of holding its goroutine
	// forever.
	PreferencesTimeoutMinutes int `mapstructure:"preferences_timeout_minutes" validate:"required,gt=0"`
}
