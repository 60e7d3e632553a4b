package models

import "time"

// Config holds daemon configuration
type Config struct {
	ListenAddr   string `toml:"listen_addr"`
	DatabasePath string `toml:"database_path"`

	// SoundPath points at a WAV file used as the alert cue.
	// Empty means the built-in chime.
	SoundPath string `toml:"sound_path"`

	// PollIntervalSeconds is the due-scan cadence. The default matches the
	// 10-second scan the alerting behaviour was tuned around.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`

	// NotificationsEnabled gates alert cues. Statuses keep updating when
	// off; no alert is ever armed.
	NotificationsEnabled bool `toml:"notifications_enabled"`

	AutoStart bool `toml:"auto_start"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // "json" or "console"
}

// DefaultConfig returns the configuration used when no file exists yet
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:           "127.0.0.1:8643",
		DatabasePath:         "",
		PollIntervalSeconds:  10,
		NotificationsEnabled: true,
		LogLevel:             "info",
		LogFormat:            "console",
	}
}

// PollInterval returns the scan cadence as a duration, falling back to the
// default when the configured value is unusable
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
