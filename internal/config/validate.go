package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const minChunkSize = 4096

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOmero(); err != nil {
		return err
	}
	if err := c.validateService(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOmero() error {
	if c.Omero.Host == "" {
		return errors.New("omero.host must be set")
	}
	if c.Omero.Port <= 0 || c.Omero.Port > 65535 {
		return fmt.Errorf("omero.port must be between 1 and 65535, got %d", c.Omero.Port)
	}
	if strings.TrimSpace(c.Omero.Username) == "" {
		return errors.New("omero.username must be set")
	}
	if c.Omero.Password == "" {
		return errors.New("omero.password must be set")
	}
	return nil
}

func (c *Config) validateService() error {
	if c.Service.PollIntervalSeconds < 1 {
		return errors.New("service.poll_interval_seconds must be at least 1")
	}
	if c.Service.BatchSize < 1 {
		return errors.New("service.batch_size must be at least 1")
	}
	if c.Service.ChunkSizeBytes < minChunkSize {
		return fmt.Errorf("service.chunk_size_bytes must be at least %d", minChunkSize)
	}
	if c.Service.Namespace == "" {
		return errors.New("service.namespace must be set")
	}
	if c.Service.StateDir == "" {
		return errors.New("service.state_dir must be set")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.WebhookURL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.WebhookURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.webhook_url %q is not a valid URL", c.Notifications.WebhookURL)
	}
	if c.Notifications.RequestTimeout < 1 {
		return errors.New("notifications.request_timeout must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
