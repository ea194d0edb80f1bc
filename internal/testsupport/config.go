package testsupport

import (
	"path/filepath"
	"testing"

	"isccd/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp state dir per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Service.StateDir = filepath.Join(t.TempDir(), "state")
	cfg.Service.PollIntervalSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithNamespace overrides the annotation namespace on the test config.
func WithNamespace(namespace string) ConfigOption {
	return func(c *config.Config) {
		c.Service.Namespace = namespace
	}
}

// WithBatchSize overrides the poll batch size on the test config.
func WithBatchSize(size int) ConfigOption {
	return func(c *config.Config) {
		c.Service.BatchSize = size
	}
}

// WithWebhook points the notifier at url.
func WithWebhook(url string) ConfigOption {
	return func(c *config.Config) {
		c.Notifications.WebhookURL = url
	}
}
