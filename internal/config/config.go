package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// SMTPConfig holds the outbound mail settings for summary delivery.
type SMTPConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	// From is the envelope sender address.
	From string `yaml:"from" json:"from"`
	// To is the recipient of all summaries and previews.
	To       string `yaml:"to" json:"to"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the status API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the status API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone all scheduling decisions are made in
	// (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is the minimum log level: "debug", "info" or "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// TickCron is a cron-style schedule string for the periodic tick.
	// The default fires every minute.
	TickCron string `yaml:"tick" json:"tick"`

	// WindowDays is the forward materialization window in days.
	WindowDays int `yaml:"window_days" json:"window_days"`

	// NotifyHour is the hour of day (0-23) summaries are sent at.
	NotifyHour int `yaml:"notify_hour" json:"notify_hour"`

	// WeeklyDay is the weekday the weekly summary is sent on. Supported
	// values are lowercase English weekday names ("sunday" .. "saturday").
	WeeklyDay string `yaml:"weekly_day" json:"weekly_day"`

	// StorageDir is where day groups, the catch-up list and the exported
	// calendar live.
	StorageDir string `yaml:"storage_dir" json:"storage_dir"`

	// GoalsFile is the goal-definition input file.
	GoalsFile string `yaml:"goals_file" json:"goals_file"`

	// SMTP, if non-nil, enables mail delivery. Without it, summaries are
	// rendered but only logged.
	SMTP *SMTPConfig `yaml:"smtp,omitempty" json:"smtp,omitempty"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:     "127.0.0.1:8080",
		Timezone:   "Asia/Seoul",
		LogLevel:   "info",
		TickCron:   "* * * * *",
		WindowDays: 40,
		NotifyHour: 8,
		WeeklyDay:  "sunday",
		StorageDir: "./var/goaltick",
		GoalsFile:  "./var/goaltick/goals.txt",
		SMTP:       nil,
		BasicAuth:  nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	switch c.LogLevel {
	case "debug", "info", "error":
		// ok
	default:
		c.LogLevel = "info"
	}
	if c.TickCron == "" {
		c.TickCron = "* * * * *"
	}
	if c.WindowDays <= 0 {
		c.WindowDays = 40
	}
	if c.NotifyHour < 0 || c.NotifyHour > 23 {
		c.NotifyHour = 8
	}
	switch c.WeeklyDay {
	case "sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday":
		// ok
	default:
		c.WeeklyDay = "sunday"
	}
	if c.StorageDir == "" {
		c.StorageDir = "./var/goaltick"
	}
	if c.GoalsFile == "" {
		c.GoalsFile = filepath.Join(c.StorageDir, "goals.txt")
	}
	if c.SMTP != nil && c.SMTP.Port <= 0 {
		c.SMTP.Port = 587
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".goaltick-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function:
//
//	cfg, _ := config.Load(path)
//	// ... mutate cfg ...
//	if err := cfg.Save(path); err != nil { ... }
func (c *Config) Save(path string) error {
	return Save(path, c)
}
