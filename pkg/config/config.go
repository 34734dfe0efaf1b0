package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		// Set default values
		setDefaults()

		// Set up environment variable reading for overrides
		viper.SetEnvPrefix("SIT")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		// Load config from fixed location (cleaned for safety)
		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		// Try to read the config file
		if err := viper.ReadInConfig(); err != nil {
			// If the config file doesn't exist, just use defaults and env vars
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		// Validate the configuration
		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	backend := viper.GetString("storage.backend")
	if backend != "local" && backend != "supabase" {
		return fmt.Errorf("invalid storage backend: %q (must be 'local' or 'supabase')", backend)
	}

	if backend == "supabase" && viper.GetString("storage.supabase_url") == "" {
		return fmt.Errorf("storage.supabase_url is required when storage.backend is 'supabase'")
	}

	// Auto-correct invalid worker count
	if viper.GetInt("worker.count") <= 0 {
		viper.Set("worker.count", 2)
	}

	if viper.GetString("auth.jwt_secret") == "" {
		fmt.Println("Warning: auth.jwt_secret is not set - token verification will reject all requests")
	}

	if viper.GetString("ai.openai_api_key") == "" {
		fmt.Println("Warning: ai.openai_api_key is not set - voice notes will be skipped and chat disabled")
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Worker.Count <= 0 {
		c.Worker.Count = 2
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Environment defaults
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8005)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults
	viper.SetDefault("database.path", "./data/sit.db")
	viper.SetDefault("database.verbose", false)

	// Storage defaults
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.bucket", "sit-voice-notes")
	viper.SetDefault("storage.local_dir", "./data/blobs")
	viper.SetDefault("storage.temp_dir", "./tmp")
	viper.SetDefault("storage.supabase_url", "")
	viper.SetDefault("storage.supabase_key", "")
	viper.SetDefault("storage.max_upload_bytes", 26214400)

	// AI defaults
	viper.SetDefault("ai.openai_api_key", "")
	viper.SetDefault("ai.chat_model", "gpt-4o-mini")
	viper.SetDefault("ai.whisper_model", "whisper-1")
	viper.SetDefault("ai.request_timeout", 2*time.Minute)

	// Chat defaults
	viper.SetDefault("chat.history_limit", 20)

	// Worker defaults
	viper.SetDefault("worker.count", 2)
	viper.SetDefault("worker.poll_interval", 5*time.Second)
	viper.SetDefault("worker.error_backoff", 10*time.Second)

	// Auth defaults
	viper.SetDefault("auth.jwt_secret", "")

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)

	// Security defaults
	viper.SetDefault("security.enable_cors", true)
	viper.SetDefault("security.cors_origins", []string{"*"})
}
