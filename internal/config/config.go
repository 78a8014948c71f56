package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Fetch    FetchConfig    `yaml:"fetch" envconfig:"FETCH"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// FetchConfig controls the HTTP client used for page and dataset downloads
type FetchConfig struct {
	UserAgent    string        `yaml:"user_agent" envconfig:"USER_AGENT" validate:"required"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	RetryCount   int           `yaml:"retry_count" envconfig:"RETRY_COUNT" validate:"gte=0,lte=10"`
	RetryWait    time.Duration `yaml:"retry_wait" envconfig:"RETRY_WAIT" validate:"gt=0"`
	RetryMaxWait time.Duration `yaml:"retry_max_wait" envconfig:"RETRY_MAX_WAIT" validate:"gt=0"`
	RateLimit    float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT" validate:"gt=0"`
	Burst        int           `yaml:"burst" envconfig:"BURST" validate:"gte=1"`
}

// AnalysisConfig contains defaults for the factor analysis pipeline
type AnalysisConfig struct {
	DatasetURL    string  `yaml:"dataset_url" envconfig:"DATASET_URL" validate:"required,url"`
	MinEigenvalue float64 `yaml:"min_eigenvalue" envconfig:"MIN_EIGENVALUE" validate:"gt=0"`
	KMOThreshold  float64 `yaml:"kmo_threshold" envconfig:"KMO_THRESHOLD" validate:"gt=0,lt=1"`
}

// Load loads configuration by overlaying three sources in increasing
// precedence: built-in defaults, an optional config.yaml, then EDA_*
// environment variables.
func Load() (*Config, error) {
	cfg := *Default()

	if configFile := getConfigFilePath(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		overlay(&cfg, fileCfg)
	}

	var envCfg Config
	if err := envconfig.Process("EDA", &envCfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	overlay(&cfg, &envCfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// overlay copies every non-zero field of src over dst
func overlay(dst, src *Config) {
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		dst.Logging.Format = src.Logging.Format
	}
	if src.Logging.Output != "" {
		dst.Logging.Output = src.Logging.Output
	}
	if src.Logging.FilePath != "" {
		dst.Logging.FilePath = src.Logging.FilePath
	}

	if src.Fetch.UserAgent != "" {
		dst.Fetch.UserAgent = src.Fetch.UserAgent
	}
	if src.Fetch.Timeout != 0 {
		dst.Fetch.Timeout = src.Fetch.Timeout
	}
	if src.Fetch.RetryCount != 0 {
		dst.Fetch.RetryCount = src.Fetch.RetryCount
	}
	if src.Fetch.RetryWait != 0 {
		dst.Fetch.RetryWait = src.Fetch.RetryWait
	}
	if src.Fetch.RetryMaxWait != 0 {
		dst.Fetch.RetryMaxWait = src.Fetch.RetryMaxWait
	}
	if src.Fetch.RateLimit != 0 {
		dst.Fetch.RateLimit = src.Fetch.RateLimit
	}
	if src.Fetch.Burst != 0 {
		dst.Fetch.Burst = src.Fetch.Burst
	}

	if src.Analysis.DatasetURL != "" {
		dst.Analysis.DatasetURL = src.Analysis.DatasetURL
	}
	if src.Analysis.MinEigenvalue != 0 {
		dst.Analysis.MinEigenvalue = src.Analysis.MinEigenvalue
	}
	if src.Analysis.KMOThreshold != 0 {
		dst.Analysis.KMOThreshold = src.Analysis.KMOThreshold
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Logging.Format != "json" {
		// Structured logs are always JSON so downstream tooling can parse them
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return validator.New().Struct(c)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Fetch: FetchConfig{
			UserAgent:    "edacli/1.0 (data analysis toolkit)",
			Timeout:      30 * time.Second,
			RetryCount:   3,
			RetryWait:    2 * time.Second,
			RetryMaxWait: 20 * time.Second,
			RateLimit:    1,
			Burst:        1,
		},
		Analysis: AnalysisConfig{
			DatasetURL:    "https://archive.ics.uci.edu/ml/machine-learning-databases/forest-fires/forestfires.csv",
			MinEigenvalue: 1.0,
			KMOThreshold:  0.5,
		},
	}
}
