package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables the loader reads,
// e.g. DECKGEN_SERVER_PORT maps to server.port.
const envPrefix = "DECKGEN"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file; absence is fine, env vars carry the rest.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.output_dir", "generated_ppts")
	v.SetDefault("storage.max_upload_bytes", 20<<20)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)

	v.SetDefault("summarizer.provider", "extractive")
	v.SetDefault("summarizer.model_name", "gemini-2.0-flash")
	v.SetDefault("summarizer.max_input_chars", 10000)
	v.SetDefault("summarizer.max_retries", 3)
	v.SetDefault("summarizer.retry_delay_seconds", 2)
}

// bindEnvKeys registers every config key with viper so AutomaticEnv picks
// up variables for keys that do not appear in any config file.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.port",
		"server.log_level",
		"storage.upload_dir",
		"storage.output_dir",
		"storage.max_upload_bytes",
		"task.worker_count",
		"task.queue_size",
		"summarizer.provider",
		"summarizer.gemini_api_key",
		"summarizer.model_name",
		"summarizer.max_input_chars",
		"summarizer.max_retries",
		"summarizer.retry_delay_seconds",
	}
	for _, key := range keys {
		// BindEnv with a single argument derives the variable name from
		// the prefix and replacer.
		_ = v.BindEnv(key)
	}
}
