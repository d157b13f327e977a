// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	geminiKey := cfg.GetAPIKey(cfg.Gemini.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	Archive       ArchiveConfig       `yaml:"archive"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// GeminiConfig holds text-generation settings for reports
type GeminiConfig struct {
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"` // Executive report sampling temperature, 0-2
}

// defaultTemperature is the executive report temperature when none is configured
const defaultTemperature float32 = 0.7

// ArchiveConfig holds feed archival settings. An empty bucket disables archival.
type ArchiveConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "maven" (default), "text" or "json"
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${GEMINI_API_KEY})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if t := *cfg.Gemini.Temperature; t < 0 || t > 2 {
		return nil, fmt.Errorf("gemini.temperature must be between 0 and 2, got %v", t)
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILE_DB_PATH", "reconcile.db"),
		},
		Gemini: GeminiConfig{
			APIKey:      os.Getenv("GEMINI_API_KEY"),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature: getEnvTemperature("GEMINI_TEMPERATURE"),
		},
		Archive: ArchiveConfig{
			Bucket: os.Getenv("ARCHIVE_BUCKET"),
			Prefix: getEnv("ARCHIVE_PREFIX", "feeds"),
		},
		API: APIConfig{
			Port:           getEnvInt("API_PORT", 8080),
			AllowedOrigins: getEnvList("API_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			MaxUploadMB:    getEnvInt("API_MAX_UPLOAD_MB", 20),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "maven"),
			},
		},
	}
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills settings a YAML file left out
func (c *Config) applyDefaults() {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "reconcile.db"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.Temperature == nil {
		t := defaultTemperature
		c.Gemini.Temperature = &t
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.MaxUploadMB == 0 {
		c.API.MaxUploadMB = 20
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvTemperature reads a sampling temperature, falling back to the
// default when unset or outside 0-2
func getEnvTemperature(key string) *float32 {
	t := defaultTemperature
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 32); err == nil && parsed >= 0 && parsed <= 2 {
			t = float32(parsed)
		}
	}
	return &t
}

// getEnvList retrieves a comma-separated environment variable
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetAPIKey retrieves an API key from config first, then tries multiple environment variable names
// Usage: GetAPIKey(cfg.Gemini.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
func (c *Config) GetAPIKey(configValue string, envVarNames ...string) string {
	// First, try the config value
	if configValue != "" {
		return configValue
	}

	// Then try each environment variable in order
	for _, envVar := range envVarNames {
		if val := os.Getenv(envVar); val != "" {
			return val
		}
	}

	return ""
}
