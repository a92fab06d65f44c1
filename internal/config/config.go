package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Automation AutomationConfig `mapstructure:"automation"`
	Report     ReportConfig     `mapstructure:"report"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// LLMConfig holds the extraction model configuration. Sampling temperature
// is deliberately not configurable: the extraction client pins it to
// near-zero so repeated runs over the same document stay stable.
type LLMConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"`
	Model            string        `mapstructure:"model"`
	MaxTokens        int           `mapstructure:"max_tokens"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxDocumentChars int           `mapstructure:"max_document_chars"`
}

// RiskConfig holds the tier boundaries in invoice currency units.
type RiskConfig struct {
	HighAbove  float64 `mapstructure:"high_above"`
	MediumFrom float64 `mapstructure:"medium_from"`
}

// AutomationConfig holds the webhook dispatch configuration
type AutomationConfig struct {
	WebhookURL       string        `mapstructure:"webhook_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxDocumentChars int           `mapstructure:"max_document_chars"`
}

// ReportConfig holds XLSX report configuration
type ReportConfig struct {
	SheetName string `mapstructure:"sheet_name"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables. A missing
// config file is not an error: every key has a default or an env binding,
// so the service can run from the environment alone.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 120*time.Second)
	viper.SetDefault("server.max_upload_bytes", 20<<20)

	// LLM defaults; an empty base_url falls through to the client's
	// built-in Gemini endpoint
	viper.SetDefault("llm.model", "gemini-2.0-flash")
	viper.SetDefault("llm.max_tokens", 1500)
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("llm.max_document_chars", 30000)

	// Risk tier defaults
	viper.SetDefault("risk.high_above", 50000)
	viper.SetDefault("risk.medium_from", 5000)

	// Automation defaults
	viper.SetDefault("automation.timeout", 30*time.Second)
	viper.SetDefault("automation.max_document_chars", 50000)

	// Report defaults
	viper.SetDefault("report.sheet_name", "Invoice Analysis")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("llm.api_key", "GEMINI_API_KEY", "LLM_API_KEY")
	viper.BindEnv("llm.base_url", "LLM_BASE_URL")
	viper.BindEnv("llm.model", "LLM_MODEL")
	viper.BindEnv("automation.webhook_url", "N8N_WEBHOOK_URL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate LLM credentials
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (set GEMINI_API_KEY)")
	}

	// Validate risk boundaries
	if c.Risk.MediumFrom <= 0 {
		return fmt.Errorf("risk.medium_from must be positive")
	}
	if c.Risk.HighAbove <= c.Risk.MediumFrom {
		return fmt.Errorf("risk.high_above must be greater than risk.medium_from")
	}

	// Validate upload limit
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}

	return nil
}
