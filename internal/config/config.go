package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories
	DirPermissions = 0755

	// DefaultPageSize is the page size used when the config file does not set one
	DefaultPageSize = 10
	// DefaultTimeout is the HTTP client timeout used when the config file does not set one
	DefaultTimeout = 30 * time.Second
)

var (
	// ConfigDir is the global configuration directory (~/.tiendactl)
	ConfigDir string

	// ConfigFile is the YAML configuration file
	ConfigFile string

	// SessionFile is the session state file (active profile, cached token)
	SessionFile string

	// ProfilesFile is the backend profiles configuration file
	ProfilesFile string

	// DatabasePath is the SQLite database file for the operation history
	DatabasePath string

	// LogFile is the default log file (the TUI owns stdout)
	LogFile string
)

// Config holds the user-editable settings loaded from config.yaml.
type Config struct {
	// BaseURL is the backend API root, used when the active profile has none
	BaseURL string `yaml:"base_url"`

	// PageSize is the default list page size
	PageSize int `yaml:"page_size"`

	// TimeoutSeconds is the HTTP client timeout in seconds
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// LogFile overrides the default log file location
	LogFile string `yaml:"log_file"`

	// HistoryEnabled toggles recording of mutations to the local history database
	HistoryEnabled *bool `yaml:"history_enabled"`
}

// Timeout returns the configured HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IsHistoryEnabled reports whether operation history recording is on (default true).
func (c *Config) IsHistoryEnabled() bool {
	if c.HistoryEnabled == nil {
		return true
	}
	return *c.HistoryEnabled
}

// Initialize sets up the configuration directory and seeds default files.
// It creates ~/.tiendactl/ if it doesn't exist.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".tiendactl")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	SessionFile = filepath.Join(ConfigDir, ".session.json")
	ProfilesFile = filepath.Join(ConfigDir, ".profiles.json")
	DatabasePath = filepath.Join(ConfigDir, "tiendactl.db")
	LogFile = filepath.Join(ConfigDir, "tiendactl.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Seed a default config file if it doesn't exist
	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		defaultConfig := []byte("base_url: http://localhost:8080\npage_size: 10\ntimeout_seconds: 30\nlog_level: info\n")
		if err := os.WriteFile(ConfigFile, defaultConfig, FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	// Seed a default profiles file if it doesn't exist
	if _, err := os.Stat(ProfilesFile); os.IsNotExist(err) {
		defaultProfiles := []byte(`[{"name":"local","base_url":"http://localhost:8080","token":""}]`)
		if err := os.WriteFile(ProfilesFile, defaultProfiles, FilePermissions); err != nil {
			return fmt.Errorf("failed to create profiles file: %w", err)
		}
	}

	return nil
}

// Load reads and parses the YAML config file, applying defaults for unset fields.
func Load() (*Config, error) {
	return LoadFrom(GetConfigFilePath())
}

// LoadFrom reads and parses a specific config file.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{
		PageSize:       DefaultPageSize,
		TimeoutSeconds: int(DefaultTimeout / time.Second),
		LogLevel:       "info",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// LocalConfigExists checks if there's a local config.yaml in the working directory
func LocalConfigExists() bool {
	_, err := os.Stat("config.yaml")
	return err == nil
}

// GetConfigFilePath returns the config file path (local or global)
func GetConfigFilePath() string {
	if LocalConfigExists() {
		return "config.yaml"
	}
	return ConfigFile
}

// GetSessionFilePath returns the session file path (local or global)
func GetSessionFilePath() string {
	if _, err := os.Stat(".session.json"); err == nil {
		return ".session.json"
	}
	return SessionFile
}

// GetProfilesFilePath returns the profiles file path (local or global)
func GetProfilesFilePath() string {
	if _, err := os.Stat(".profiles.json"); err == nil {
		return ".profiles.json"
	}
	return ProfilesFile
}
