package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Storage      StorageConfig      `mapstructure:"storage"`
	AI           AIConfig           `mapstructure:"ai"`
	Chat         ChatConfig         `mapstructure:"chat"`
	Worker       WorkerConfig       `mapstructure:"worker"`
	Auth         AuthConfig         `mapstructure:"auth"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
	Security     SecurityConfig     `mapstructure:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// StorageConfig holds blob store settings
type StorageConfig struct {
	Backend        string `mapstructure:"backend"` // "local" or "supabase"
	Bucket         string `mapstructure:"bucket"`
	LocalDir       string `mapstructure:"local_dir"`
	TempDir        string `mapstructure:"temp_dir"`
	SupabaseURL    string `mapstructure:"supabase_url"`
	SupabaseKey    string `mapstructure:"supabase_key"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// AIConfig holds OpenAI settings shared by the transcriber and the chat loop
type AIConfig struct {
	OpenAIAPIKey   string        `mapstructure:"openai_api_key"`
	ChatModel      string        `mapstructure:"chat_model"`
	WhisperModel   string        `mapstructure:"whisper_model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ChatConfig holds conversational assistant settings
type ChatConfig struct {
	HistoryLimit int `mapstructure:"history_limit"`
}

// WorkerConfig holds transcription worker settings
type WorkerConfig struct {
	Count        int           `mapstructure:"count"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

// AuthConfig holds token verification settings
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// RateLimitingConfig holds rate limiting settings
type RateLimitingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SecurityConfig holds CORS and request hardening settings
type SecurityConfig struct {
	EnableCORS  bool     `mapstructure:"enable_cors"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}
