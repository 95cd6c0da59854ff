package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"datasense/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Server   ServerConfig   `yaml:"server"`
	Ops      OpsConfig      `yaml:"ops"`
	Limits   LimitsConfig   `yaml:"limits"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// DatabaseConfig holds database connection settings. An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// AIConfig holds AI/LLM related settings
type AIConfig struct {
	Provider     string        `yaml:"provider"` // openai, anthropic or heuristic
	OpenAIKey    string        `yaml:"-"`
	AnthropicKey string        `yaml:"-"`
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	MaxTokens    int           `yaml:"max_tokens"`
	Temperature  float64       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
	Narrative    bool          `yaml:"narrative"`
}

// APIKey returns the key for the selected provider
func (c AIConfig) APIKey() string {
	if c.Provider == "anthropic" {
		return c.AnthropicKey
	}
	return c.OpenAIKey
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

// OpsConfig holds the health, metrics and pprof listener
type OpsConfig struct {
	Port    string `yaml:"port"`
	Enabled bool   `yaml:"enabled"`
}

// LimitsConfig bounds uploads
type LimitsConfig struct {
	MaxFileBytes int64 `yaml:"max_file_bytes"`
	MaxRows      int   `yaml:"max_rows"`
}

// AnalysisConfig holds correlation thresholds
type AnalysisConfig struct {
	NumericThreshold float64 `yaml:"numeric_threshold"`
	ThemeThreshold   float64 `yaml:"theme_threshold"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "heuristic",
			Model:       "gpt-4.1-mini",
			MaxTokens:   1500,
			Temperature: 0.2,
			Timeout:     30 * time.Second,
		},
		Server:   ServerConfig{Port: "8080", GinMode: "release"},
		Ops:      OpsConfig{Port: "6060", Enabled: true},
		Limits:   LimitsConfig{MaxFileBytes: 10 << 20, MaxRows: 5000},
		Analysis: AnalysisConfig{NumericThreshold: 0.3, ThemeThreshold: 10},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// DATASENSE_CONFIG, then environment variables, and validates it
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("DATASENSE_CONFIG"); path != "" {
		if err := config.LoadFile(path); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	loadDatabaseConfig(&config.Database)
	loadAIConfig(&config.AI)
	loadServerConfig(&config.Server)
	loadOpsConfig(&config.Ops)
	loadLimitsConfig(&config.Limits)
	loadAnalysisConfig(&config.Analysis)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadFile overlays YAML settings onto the config. Keys absent from the file keep their
// current values.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return errors.ConfigInvalid("invalid YAML in " + path + ": " + err.Error())
	}
	return nil
}

func loadDatabaseConfig(c *DatabaseConfig) {
	c.URL = getEnvOrDefault("DATABASE_URL", c.URL)
}

func loadAIConfig(c *AIConfig) {
	c.OpenAIKey = getEnvOrDefault("OPENAI_API_KEY", c.OpenAIKey)
	c.AnthropicKey = getEnvOrDefault("ANTHROPIC_API_KEY", c.AnthropicKey)
	c.Provider = strings.ToLower(getEnvOrDefault("LLM_PROVIDER", c.Provider))
	c.BaseURL = getEnvOrDefault("LLM_BASE_URL", c.BaseURL)
	c.Model = getEnvOrDefault("LLM_MODEL", c.Model)
	c.MaxTokens = getEnvIntOrDefault("MAX_TOKENS", c.MaxTokens)
	c.Temperature = getEnvFloatOrDefault("TEMPERATURE", c.Temperature)
	c.Timeout = getEnvDurationOrDefault("LLM_TIMEOUT", c.Timeout)
	c.Narrative = getEnvBoolOrDefault("LLM_NARRATIVE", c.Narrative)
}

func loadServerConfig(c *ServerConfig) {
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.GinMode = getEnvOrDefault("GIN_MODE", c.GinMode)
}

func loadOpsConfig(c *OpsConfig) {
	c.Port = getEnvOrDefault("OPS_PORT", c.Port)
	c.Enabled = getEnvBoolOrDefault("OPS_ENABLED", c.Enabled)
}

func loadLimitsConfig(c *LimitsConfig) {
	c.MaxFileBytes = int64(getEnvIntOrDefault("MAX_FILE_BYTES", int(c.MaxFileBytes)))
	c.MaxRows = getEnvIntOrDefault("MAX_ROWS", c.MaxRows)
}

func loadAnalysisConfig(c *AnalysisConfig) {
	c.NumericThreshold = getEnvFloatOrDefault("NUMERIC_THRESHOLD", c.NumericThreshold)
	c.ThemeThreshold = getEnvFloatOrDefault("THEME_THRESHOLD", c.ThemeThreshold)
}

func validateConfig(config *Config) error {
	switch config.AI.Provider {
	case "openai", "anthropic":
		if config.AI.APIKey() == "" {
			return errors.ConfigInvalid("API key is required for LLM provider " + config.AI.Provider)
		}
	case "heuristic":
	default:
		return errors.ConfigInvalid("unknown LLM provider " + config.AI.Provider)
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Limits.MaxFileBytes <= 0 || config.Limits.MaxRows <= 0 {
		return errors.ConfigInvalid("upload limits must be positive")
	}
	if config.Analysis.NumericThreshold < 0 || config.Analysis.NumericThreshold >= 1 {
		return errors.ConfigInvalid("numeric threshold must be in [0, 1)")
	}
	if config.Analysis.ThemeThreshold < 0 || config.Analysis.ThemeThreshold >= 100 {
		return errors.ConfigInvalid("theme threshold must be in [0, 100)")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
