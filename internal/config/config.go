package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage"    validate:"required"`
	Task       TaskConfig       `mapstructure:"task"       validate:"required"`
	Summarizer SummarizerConfig `mapstructure:"summarizer" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig controls where uploads and rendered decks live on disk.
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir" validate:"required"`
	OutputDir string `mapstructure:"output_dir" validate:"required"`
	// MaxUploadBytes caps the size of a single uploaded document.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}

// TaskConfig controls the background worker pool.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0,lte=64"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gt=0"`
}

// SummarizerConfig selects and configures the summarization provider.
// The gemini provider requires an API key; extractive runs locally.
type SummarizerConfig struct {
	Provider     string `mapstructure:"provider" validate:"required,oneof=extractive gemini"`
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	ModelName    string `mapstructure:"model_name" validate:"required_if=Provider gemini"`
	// MaxInputChars caps how much extracted text reaches the provider.
	MaxInputChars     int `mapstructure:"max_input_chars" validate:"gte=0"`
	MaxRetries        int `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}
