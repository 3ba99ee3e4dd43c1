// Package config provides YAML-based configuration loading for Beacon.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Beacon configuration, loaded from beacon.yaml.
type Config struct {
	Store        StoreConfig        `yaml:"store"`
	Message      MessageConfig      `yaml:"message"`
	Triggers     TriggersConfig     `yaml:"triggers"`
	Transport    TransportConfig    `yaml:"transport"`
	Permission   PermissionConfig   `yaml:"permission"`
	Reachability ReachabilityConfig `yaml:"reachability"`
	Notify       NotifyConfig       `yaml:"notify"`
	History      HistoryConfig      `yaml:"history"`
}

// StoreConfig selects the incident/contact store backend: a local SQLite
// file (default) or a shared MySQL console database.
type StoreConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "mysql"
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// MessageConfig controls alert-body composition. An empty template passes
// the dispatch message through unchanged; otherwise {{.Message}} is
// substituted into the template.
type MessageConfig struct {
	Template string `yaml:"template"`
}

// TriggersConfig holds per-detector tuning.
type TriggersConfig struct {
	Shake  ShakeConfig  `yaml:"shake"`
	Volume VolumeConfig `yaml:"volume"`
}

// ShakeConfig tunes the motion-based trigger.
type ShakeConfig struct {
	Enabled          bool    `yaml:"enabled"`
	SampleIntervalMS int     `yaml:"sample_interval_ms"`
	Threshold        float64 `yaml:"threshold"`
	Count            int     `yaml:"count"`
	WindowMS         int     `yaml:"window_ms"`
}

// VolumeConfig tunes the hardware-button-sequence trigger.
type VolumeConfig struct {
	Enabled  bool `yaml:"enabled"`
	Count    int  `yaml:"count"`
	WindowMS int  `yaml:"window_ms"`
}

// TransportConfig holds the device command templates used for message and
// call hand-offs. Placeholders: {{.To}}, {{.Body}}, {{.Number}}.
type TransportConfig struct {
	ViewCommand string `yaml:"view_command"` // interactive send surface
	SendCommand string `yaml:"send_command"` // silent/direct send surface
	DialCommand string `yaml:"dial_command"` // dialer surface
}

// PermissionConfig controls the call-permission gateway. Mode "granted"
// (default) models platforms without a call-permission gate; mode "command"
// shells out to check/request commands whose exit status is the verdict.
type PermissionConfig struct {
	Mode           string `yaml:"mode"` // "granted", "denied", or "command"
	CheckCommand   string `yaml:"check_command"`
	RequestCommand string `yaml:"request_command"`
	TimeoutSec     int    `yaml:"timeout_sec"`
}

// ReachabilityConfig tunes the connectivity probe.
type ReachabilityConfig struct {
	ProbeHost  string `yaml:"probe_host"` // TCP dial target for link check
	ProbeURL   string `yaml:"probe_url"`  // HTTP target for internet check
	TimeoutSec int    `yaml:"timeout_sec"`
}

// NotifyConfig selects the ops alert channel platform and its credentials.
type NotifyConfig struct {
	Platform string        `yaml:"platform"` // "", "slack", or "discord"
	Slack    SlackConfig   `yaml:"slack"`
	Discord  DiscordConfig `yaml:"discord"`
	Digest   DigestConfig  `yaml:"digest"`
}

// SlackConfig holds Slack credentials for the ops alert channel.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord credentials for the ops alert channel.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DigestConfig schedules the daily incident digest.
type DigestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"` // 5-field cron expression
}

// HistoryConfig tunes the incident log.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Path == "" {
		c.Store.Path = "beacon.db"
	}
	if c.Store.Host == "" {
		c.Store.Host = "127.0.0.1"
	}
	if c.Store.Port == 0 {
		c.Store.Port = 3306
	}
	if c.Triggers.Shake.SampleIntervalMS == 0 {
		c.Triggers.Shake.SampleIntervalMS = 100
	}
	if c.Triggers.Shake.Threshold == 0 {
		c.Triggers.Shake.Threshold = 2.5
	}
	if c.Triggers.Shake.Count == 0 {
		c.Triggers.Shake.Count = 3
	}
	if c.Triggers.Shake.WindowMS == 0 {
		c.Triggers.Shake.WindowMS = 2000
	}
	if c.Triggers.Volume.Count == 0 {
		c.Triggers.Volume.Count = 4
	}
	if c.Triggers.Volume.WindowMS == 0 {
		c.Triggers.Volume.WindowMS = 1500
	}
	if c.Permission.Mode == "" {
		c.Permission.Mode = "granted"
	}
	if c.Permission.TimeoutSec == 0 {
		c.Permission.TimeoutSec = 3
	}
	if c.Reachability.ProbeHost == "" {
		c.Reachability.ProbeHost = "1.1.1.1:53"
	}
	if c.Reachability.ProbeURL == "" {
		c.Reachability.ProbeURL = "http://connectivitycheck.gstatic.com/generate_204"
	}
	if c.Reachability.TimeoutSec == 0 {
		c.Reachability.TimeoutSec = 3
	}
	if c.Notify.Digest.Cron == "" {
		c.Notify.Digest.Cron = "0 8 * * *"
	}
	if c.History.Capacity == 0 {
		c.History.Capacity = 100
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or mysql, got %q", c.Store.Driver))
	}
	if c.Store.Driver == "mysql" && c.Store.Database == "" {
		errs = append(errs, "store.database is required for mysql")
	}
	switch c.Permission.Mode {
	case "granted", "denied", "command":
	default:
		errs = append(errs, fmt.Sprintf("permission.mode must be granted, denied, or command, got %q", c.Permission.Mode))
	}
	if c.Permission.Mode == "command" && c.Permission.CheckCommand == "" {
		errs = append(errs, "permission.check_command is required for command mode")
	}
	switch c.Notify.Platform {
	case "", "slack", "discord":
	default:
		errs = append(errs, fmt.Sprintf("notify.platform must be slack or discord, got %q", c.Notify.Platform))
	}
	if c.Notify.Platform == "slack" && c.Notify.Slack.BotToken == "" {
		errs = append(errs, "notify.slack.bot_token is required")
	}
	if c.Notify.Platform == "discord" && c.Notify.Discord.BotToken == "" {
		errs = append(errs, "notify.discord.bot_token is required")
	}
	if c.Message.Template != "" && !strings.Contains(c.Message.Template, "{{.Message}}") {
		errs = append(errs, "message.template must contain {{.Message}}")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
