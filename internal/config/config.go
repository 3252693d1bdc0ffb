// Package config provides YAML-based configuration loading for MQ Sentinel.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level MQ Sentinel configuration, loaded from mqsentinel.yaml.
type Config struct {
	Port             int           `yaml:"port"`              // HTTP API port
	DefaultThreshold float64       `yaml:"default_threshold"` // queue depth fraction, 0-1
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	ResolutionTTL    time.Duration `yaml:"resolution_ttl"`
	ObjectCacheTTL   time.Duration `yaml:"object_cache_ttl"`
	InsecureTLS      bool          `yaml:"insecure_tls"` // skip verification against the admin API (self-signed dev appliances)

	Listener ListenerConfig `yaml:"listener"`
	Poll     PollConfig     `yaml:"poll"`
	Store    StoreConfig    `yaml:"store"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Chat     ChatConfig     `yaml:"chat"`
}

// ListenerConfig describes how the companion event-listener process is launched.
type ListenerConfig struct {
	Command []string `yaml:"command"`  // argv, e.g. ["mvn", "spring-boot:run"]
	WorkDir string   `yaml:"work_dir"` // directory containing the listener project
	Port    int      `yaml:"port"`     // port the listener serves events on
}

// PollConfig controls the monitoring poll loop. Either a fixed interval or a
// 5-field cron expression; cron wins when both are set.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	Cron     string        `yaml:"cron"`
}

// StoreConfig holds connection settings for the activity store.
type StoreConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "mysql"
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AlertsConfig configures outbound issue notifications.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack alert adapter settings. Disabled when the token is empty.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord alert adapter settings. Disabled when the token is empty.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// ChatConfig configures the assistant collaborator.
type ChatConfig struct {
	APIKey  string `yaml:"api_key"` // falls back to OPENAI_API_KEY
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"` // optional override for self-hosted gateways
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
	if c.Port == 0 {
		c.Port = 5000
	}
	if c.DefaultThreshold == 0 {
		c.DefaultThreshold = 0.8
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 30 * time.Second
	}
	if c.ResolutionTTL == 0 {
		c.ResolutionTTL = 60 * time.Second
	}
	if c.ObjectCacheTTL == 0 {
		c.ObjectCacheTTL = 10 * time.Second
	}
	if len(c.Listener.Command) == 0 {
		c.Listener.Command = []string{"mvn", "spring-boot:run"}
	}
	if c.Listener.Port == 0 {
		c.Listener.Port = 8080
	}
	if c.Poll.Interval == 0 && c.Poll.Cron == "" {
		c.Poll.Interval = 30 * time.Second
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		c.Store.Path = "mqsentinel.db"
	}
	if c.Store.Driver == "mysql" {
		if c.Store.Host == "" {
			c.Store.Host = "127.0.0.1"
		}
		if c.Store.Port == 0 {
			c.Store.Port = 3306
		}
		if c.Store.Database == "" {
			c.Store.Database = "mqsentinel"
		}
	}
	if c.Chat.Model == "" {
		c.Chat.Model = "gpt-4o-mini"
	}
	if c.Chat.APIKey == "" {
		c.Chat.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.DefaultThreshold < 0 || c.DefaultThreshold > 1 {
		errs = append(errs, "default_threshold must be between 0 and 1")
	}
	if c.Listener.WorkDir == "" {
		errs = append(errs, "listener.work_dir is required")
	}
	switch c.Store.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported (sqlite or mysql)", c.Store.Driver))
	}
	if c.Alerts.Slack.BotToken != "" && c.Alerts.Slack.ChannelID == "" {
		errs = append(errs, "alerts.slack.channel_id is required when a bot token is set")
	}
	if c.Alerts.Discord.BotToken != "" && c.Alerts.Discord.ChannelID == "" {
		errs = append(errs, "alerts.discord.channel_id is required when a bot token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
