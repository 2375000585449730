// Package config provides configuration loading and validation for the
// server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the application configuration that can be loaded
// from a JSON file. All fields are optional; missing values use defaults
// or must be provided via CLI flags.
type Config struct {
	// Server
	ListenAddr string `json:"listen_addr,omitempty"` // HTTP listen address

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Catalog paths
	Catalog      string `json:"catalog,omitempty"`       // Path to job catalog JSON file
	QuestionBank string `json:"question_bank,omitempty"` // Path to question bank JSON file

	// Assessments
	AttemptQuestions int `json:"attempt_questions,omitempty"` // Questions per assessment attempt

	// Ingestion
	UseBrowser   bool `json:"use_browser,omitempty"`   // Use headless browser for SPA job boards
	FetchTimeout int  `json:"fetch_timeout,omitempty"` // HTTP fetch timeout in seconds

	// Logging
	LogJSON bool `json:"log_json,omitempty"` // Emit JSON log lines instead of console
	Debug   bool `json:"debug,omitempty"`    // Enable debug-level logging
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		ListenAddr:       ":8080",
		AttemptQuestions: 5,
		FetchTimeout:     30,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Booleans accept
// the strconv.ParseBool forms; parse failures leave the field unset.
func FromEnv() Config {
	cfg := Config{
		ListenAddr:   os.Getenv("SKILLMATCH_ADDR"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Catalog:      os.Getenv("SKILLMATCH_CATALOG"),
		QuestionBank: os.Getenv("SKILLMATCH_QUESTION_BANK"),
	}

	if v := os.Getenv("SKILLMATCH_ATTEMPT_QUESTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AttemptQuestions = n
		}
	}
	if v := os.Getenv("SKILLMATCH_FETCH_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FetchTimeout = n
		}
	}
	if v := os.Getenv("SKILLMATCH_USE_BROWSER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseBrowser = b
		}
	}
	if v := os.Getenv("SKILLMATCH_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogJSON = b
		}
	}
	if v := os.Getenv("SKILLMATCH_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}

	return cfg
}

// Validate checks that the configuration has valid values.
// Note: required fields are not checked here since commands differ in
// what they need; each command validates its own requirements.
func (c *Config) Validate() error {
	if c.AttemptQuestions < 0 {
		return fmt.Errorf("config error: 'attempt_questions' must be non-negative")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("config error: 'fetch_timeout' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.Catalog != "" {
		if _, err := os.Stat(c.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("config error: catalog file not found: %s", c.Catalog)
		}
	}
	if c.QuestionBank != "" {
		if _, err := os.Stat(c.QuestionBank); os.IsNotExist(err) {
			return fmt.Errorf("config error: question bank file not found: %s", c.QuestionBank)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Catalog == "" {
		result.Catalog = defaults.Catalog
	}
	if result.QuestionBank == "" {
		result.QuestionBank = defaults.QuestionBank
	}

	// Int fields: use default if zero
	if result.AttemptQuestions == 0 {
		result.AttemptQuestions = defaults.AttemptQuestions
	}
	if result.FetchTimeout == 0 {
		result.FetchTimeout = defaults.FetchTimeout
	}

	// Bool fields: unset and false are indistinguishable, so true from
	// either side wins
	if defaults.UseBrowser {
		result.UseBrowser = true
	}
	if defaults.LogJSON {
		result.LogJSON = true
	}
	if defaults.Debug {
		result.Debug = true
	}

	return result
}
