package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageLocal  = "local"
	StorageRemote = "remote"
)

// Config holds user preferences
type Config struct {
	Storage       string `yaml:"storage" json:"storage"`               // local or remote
	DatabasePath  string `yaml:"database_path" json:"database_path"`   // SQLite file for the local slot
	RemoteURL     string `yaml:"remote_url" json:"remote_url"`         // Postgres DSN of the hosted events table
	Listen        string `yaml:"listen" json:"listen"`                 // Web host address
	ConfirmDelete bool   `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete

	Identity IdentityConfig `yaml:"identity" json:"identity"`
	Notify   NotifyConfig   `yaml:"notify" json:"notify"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// IdentityConfig points at the hosted identity provider
type IdentityConfig struct {
	URL         string `yaml:"url" json:"url"`
	AnonKey     string `yaml:"anon_key" json:"anon_key"`
	JWTSecret   string `yaml:"jwt_secret" json:"jwt_secret"`
	RedirectURL string `yaml:"redirect_url" json:"redirect_url"`
}

// NotifyConfig controls the daily reminder
type NotifyConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	At          string `yaml:"at" json:"at"`                     // HH:MM, local time
	Every       string `yaml:"every" json:"every"`               // poll period
	DedupeDaily bool   `yaml:"dedupe_daily" json:"dedupe_daily"` // at most one reminder per day
}

// Dir returns ~/.neocount
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".neocount"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	logPath := ""
	dbPath := ""
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "neocount.log")
		dbPath = filepath.Join(dir, "neocount.db")
	}

	return &Config{
		Storage:       getEnv("NEOCOUNT_STORAGE", StorageLocal),
		DatabasePath:  getEnv("NEOCOUNT_DB", dbPath),
		RemoteURL:     getEnv("NEOCOUNT_REMOTE_URL", ""),
		Listen:        getEnv("NEOCOUNT_LISTEN", ":8080"),
		ConfirmDelete: true,
		Identity: IdentityConfig{
			URL:         getEnv("NEOCOUNT_IDENTITY_URL", ""),
			AnonKey:     getEnv("NEOCOUNT_ANON_KEY", ""),
			JWTSecret:   getEnv("NEOCOUNT_JWT_SECRET", ""),
			RedirectURL: getEnv("NEOCOUNT_REDIRECT_URL", "http://localhost:8080"),
		},
		Notify: NotifyConfig{
			Enabled:     true,
			At:          "09:00",
			Every:       "60s",
			DedupeDaily: true,
		},
		LogLevel:   getEnv("NEOCOUNT_LOG_LEVEL", "INFO"),
		LogFile:    getEnv("NEOCOUNT_LOG_FILE", logPath),
		LogConsole: getEnv("NEOCOUNT_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Path returns ~/.neocount/config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from ~/.neocount/config.yaml
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads config from path, returning defaults when it does not exist
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the app cannot run with
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageLocal, StorageRemote:
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageLocal, StorageRemote)
	}
	if _, _, err := c.Notify.Clock(); err != nil {
		return err
	}
	if _, err := c.Notify.Interval(); err != nil {
		return err
	}
	return nil
}

// IsRemote reports whether events live in the hosted table
func (c *Config) IsRemote() bool {
	return c.Storage == StorageRemote
}

// Clock parses At into hour and minute
func (n NotifyConfig) Clock() (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(n.At))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid notify time %q: %w", n.At, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Interval parses Every, defaulting to one minute
func (n NotifyConfig) Interval() (time.Duration, error) {
	if n.Every == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(n.Every)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid notify interval %q", n.Every)
	}
	return d, nil
}

// Save saves config to ~/.neocount/config.yaml
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
