package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"zotroam/pkg/logger"
	"zotroam/pkg/rpc"
)

// Config represents the application configuration.
type Config struct {
	// Zotero connection and link rendering
	Zotero ZoteroConfig `json:"zotero"`

	// org-roam directory and database
	Roam RoamConfig `json:"roam"`

	// Logging configuration
	Log *LogConfig `json:"log,omitempty"`
}

// ZoteroConfig contains the Zotero integration settings.
type ZoteroConfig struct {
	Addr            string `json:"addr"`               // Integration port address
	LinkFormat      string `json:"linkFormat"`         // original, app, or web
	Username        string `json:"username,omitempty"` // zotero.org username, required for web links
	TemplateVersion int    `json:"templateVersion"`    // Citation template version sent on initiation
}

// RoamConfig contains the org-roam settings.
type RoamConfig struct {
	Directory        string `json:"directory"`        // Where created notes are written
	Database         string `json:"database"`         // Path to org-roam.db
	FilenameTemplate string `json:"filenameTemplate"` // {timestamp} and {slug} placeholders
	Opener           string `json:"opener"`           // Command to focus a note; {file} and {pos} placeholders
	URIOpener        string `json:"uriOpener"`        // Command to open a reference-manager URI; {uri} placeholder
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `json:"level,omitempty"`  // Log level: debug, info, warn, error
	File   string `json:"file,omitempty"`   // Log file path (empty = no file logging)
	Prefix string `json:"prefix,omitempty"` // Log prefix
}

// DefaultLogConfig returns default logging configuration.
func DefaultLogConfig() *LogConfig {
	homeDir, _ := os.UserHomeDir()
	return &LogConfig{
		Level:  "info",
		File:   filepath.Join(homeDir, ".zotroam", "zotroam.log"),
		Prefix: "zotroam",
	}
}

// CreateLogger creates a logger from the log configuration.
func (c *LogConfig) CreateLogger() (*slog.Logger, error) {
	if c == nil {
		c = DefaultLogConfig()
	}

	cfg := &logger.Config{
		Level:    logger.ParseLogLevel(c.Level),
		Prefix:   c.Prefix,
		Console:  true,
		File:     c.File != "",
		FilePath: c.File,
	}

	return logger.NewLogger(cfg)
}

// LoadConfig loads configuration from file and merges with environment variables.
// Environment variables take precedence over config file values.
func LoadConfig(configPath string) (*Config, error) {
	homeDir, _ := os.UserHomeDir()

	// Start with default config
	cfg := &Config{
		Zotero: ZoteroConfig{
			Addr:            rpc.DefaultAddr,
			LinkFormat:      "original",
			TemplateVersion: 3,
		},
		Roam: RoamConfig{
			Directory:        filepath.Join(homeDir, "org-roam"),
			Database:         filepath.Join(homeDir, ".emacs.d", "org-roam.db"),
			FilenameTemplate: "{timestamp}-{slug}.org",
			Opener:           "emacsclient -n {file}",
			URIOpener:        "xdg-open {uri}",
		},
		Log: DefaultLogConfig(),
	}

	// Load from file if exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Merge with defaults (file values override defaults)
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables override config file
	if val := os.Getenv("ZOTROAM_ADDR"); val != "" {
		cfg.Zotero.Addr = val
	}
	if val := os.Getenv("ZOTROAM_LINK_FORMAT"); val != "" {
		cfg.Zotero.LinkFormat = val
	}
	if val := os.Getenv("ZOTROAM_USERNAME"); val != "" {
		cfg.Zotero.Username = val
	}
	if val := os.Getenv("ZOTROAM_ROAM_DIR"); val != "" {
		cfg.Roam.Directory = val
	}
	if val := os.Getenv("ZOTROAM_ROAM_DB"); val != "" {
		cfg.Roam.Database = val
	}

	return cfg, nil
}

// SaveConfig saves configuration to file.
func SaveConfig(cfg *Config, configPath string) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal with indentation
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".zotroam", "config.json"), nil
}
