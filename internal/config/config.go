// Package config provides application configuration management.
package config

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/oszuidwest/swim-stopwatch/internal/util"
)

// Configuration defaults.
const (
	DefaultWebPort       = 8080
	DefaultEmailSMTPPort = 587
	DefaultEmailFromName = "Swim Stopwatch"
)

// WebConfig contains web server configuration.
type WebConfig struct {
	Port int `json:"port"`
}

// EmailConfig contains email notification configuration.
type EmailConfig struct {
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
	FromName   string `json:"from_name,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	Recipients string `json:"recipients,omitempty"`
}

// NotificationsConfig contains all notification configuration.
type NotificationsConfig struct {
	WebhookURL string      `json:"webhook_url,omitempty"`
	LogPath    string      `json:"log_path,omitempty"`
	Email      EmailConfig `json:"email,omitempty"`
}

// Config holds all application configuration. It is safe for concurrent use.
type Config struct {
	Web           WebConfig           `json:"web"`
	Notifications NotificationsConfig `json:"notifications,omitempty"`

	mu       sync.RWMutex
	filePath string
}

// envOverrides lists the environment variables that take precedence over the file.
type envOverrides struct {
	WebPort        int    `env:"STOPWATCH_WEB_PORT"`
	WebhookURL     string `env:"STOPWATCH_WEBHOOK_URL"`
	LogPath        string `env:"STOPWATCH_LOG_PATH"`
	SMTPHost       string `env:"STOPWATCH_SMTP_HOST"`
	SMTPPort       int    `env:"STOPWATCH_SMTP_PORT"`
	SMTPFromName   string `env:"STOPWATCH_SMTP_FROM_NAME"`
	SMTPUsername   string `env:"STOPWATCH_SMTP_USERNAME"`
	SMTPPassword   string `env:"STOPWATCH_SMTP_PASSWORD"`
	SMTPRecipients string `env:"STOPWATCH_SMTP_RECIPIENTS"`
}

// New creates a new Config with default values.
func New(filePath string) *Config {
	return &Config{
		Web: WebConfig{
			Port: DefaultWebPort,
		},
		filePath: filePath,
	}
}

// Load reads config from file, creating a default if none exists, then
// applies environment overrides. Overrides are never written back to the file.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	switch {
	case os.IsNotExist(err):
		if err := c.saveLocked(); err != nil {
			return err
		}
	case err != nil:
		return util.WrapError("read config", err)
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return util.WrapError("parse config", err)
		}
	}

	if err := c.applyEnvLocked(); err != nil {
		return err
	}
	c.applyDefaults()

	if verr := util.ValidatePort("web port", c.Web.Port); verr != nil {
		return fmt.Errorf("invalid config: %w", verr)
	}
	return nil
}

// applyEnvLocked overlays non-empty environment variables. Caller must hold c.mu.
func (c *Config) applyEnvLocked() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return util.WrapError("parse environment", err)
	}

	c.Web.Port = cmp.Or(o.WebPort, c.Web.Port)
	c.Notifications.WebhookURL = cmp.Or(o.WebhookURL, c.Notifications.WebhookURL)
	c.Notifications.LogPath = cmp.Or(o.LogPath, c.Notifications.LogPath)

	email := &c.Notifications.Email
	email.Host = cmp.Or(o.SMTPHost, email.Host)
	email.Port = cmp.Or(o.SMTPPort, email.Port)
	email.FromName = cmp.Or(o.SMTPFromName, email.FromName)
	email.Username = cmp.Or(o.SMTPUsername, email.Username)
	email.Password = cmp.Or(o.SMTPPassword, email.Password)
	email.Recipients = cmp.Or(o.SMTPRecipients, email.Recipients)
	return nil
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.Web.Port == 0 {
		c.Web.Port = DefaultWebPort
	}
}

// Save writes the configuration to file.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// saveLocked persists configuration. Caller must hold c.mu.
func (c *Config) saveLocked() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// WebPort returns the web server port.
func (c *Config) WebPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Web.Port
}

// Snapshot contains a point-in-time copy of all configuration values.
// Use this instead of multiple individual getters to reduce mutex contention.
type Snapshot struct {
	WebPort int

	WebhookURL string
	LogPath    string

	EmailSMTPHost   string
	EmailSMTPPort   int
	EmailFromName   string
	EmailUsername   string
	EmailPassword   string
	EmailRecipients string
}

// Snapshot returns a point-in-time copy of all configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		WebPort: c.Web.Port,

		WebhookURL: c.Notifications.WebhookURL,
		LogPath:    c.Notifications.LogPath,

		EmailSMTPHost:   c.Notifications.Email.Host,
		EmailSMTPPort:   cmp.Or(c.Notifications.Email.Port, DefaultEmailSMTPPort),
		EmailFromName:   cmp.Or(c.Notifications.Email.FromName, DefaultEmailFromName),
		EmailUsername:   c.Notifications.Email.Username,
		EmailPassword:   c.Notifications.Email.Password,
		EmailRecipients: c.Notifications.Email.Recipients,
	}
}

// HasWebhook returns true if a webhook URL is configured.
func (s *Snapshot) HasWebhook() bool {
	return s.WebhookURL != ""
}

// HasEmail returns true if email notifications are configured.
func (s *Snapshot) HasEmail() bool {
	return s.EmailSMTPHost != "" && s.EmailRecipients != ""
}

// HasLogPath returns true if a log path is configured.
func (s *Snapshot) HasLogPath() bool {
	return s.LogPath != ""
}
