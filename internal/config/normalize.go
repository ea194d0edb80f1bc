package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error

	c.Omero.Host = strings.TrimSpace(c.Omero.Host)
	c.Service.Namespace = strings.TrimSpace(c.Service.Namespace)
	c.Notifications.WebhookURL = strings.TrimSpace(c.Notifications.WebhookURL)

	if strings.TrimSpace(c.Service.StateDir) == "" {
		c.Service.StateDir = defaultStateDir
	}
	if c.Service.StateDir, err = expandPath(c.Service.StateDir); err != nil {
		return fmt.Errorf("service.state_dir: %w", err)
	}

	if strings.TrimSpace(c.Logging.File) != "" {
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	return nil
}
