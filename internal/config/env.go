package config

import (
	"strconv"
	"strings"
)

// LookupFunc mirrors os.LookupEnv so tests can inject environments.
type LookupFunc func(key string) (string, bool)

// applyEnv overlays OMERO_ISCC_* environment variables onto the config.
// Unparseable numeric or boolean values are ignored rather than fatal; the
// validator catches genuinely unusable results.
func (c *Config) applyEnv(lookup LookupFunc) {
	setString(lookup, "OMERO_ISCC_HOST", &c.Omero.Host)
	setInt(lookup, "OMERO_ISCC_PORT", &c.Omero.Port)
	setString(lookup, "OMERO_ISCC_USERNAME", &c.Omero.Username)
	setString(lookup, "OMERO_ISCC_PASSWORD", &c.Omero.Password)
	setBool(lookup, "OMERO_ISCC_SECURE", &c.Omero.Secure)
	setInt(lookup, "OMERO_ISCC_POLL_INTERVAL", &c.Service.PollIntervalSeconds)
	setInt(lookup, "OMERO_ISCC_BATCH_SIZE", &c.Service.BatchSize)
	setInt(lookup, "OMERO_ISCC_CHUNK_SIZE", &c.Service.ChunkSizeBytes)
	setString(lookup, "OMERO_ISCC_NAMESPACE", &c.Service.Namespace)
	setString(lookup, "OMERO_ISCC_STATE_DIR", &c.Service.StateDir)
	setString(lookup, "OMERO_ISCC_WEBHOOK_URL", &c.Notifications.WebhookURL)
	setString(lookup, "OMERO_ISCC_LOG_LEVEL", &c.Logging.Level)
	setString(lookup, "OMERO_ISCC_LOG_FORMAT", &c.Logging.Format)
}

// ApplyEnv is the exported hook used by tests; Load calls it with os.LookupEnv.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	c.applyEnv(lookup)
}

func setString(lookup LookupFunc, key string, target *string) {
	if value, ok := lookup(key); ok {
		*target = value
	}
}

func setInt(lookup LookupFunc, key string, target *int) {
	value, ok := lookup(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return
	}
	*target = parsed
}

func setBool(lookup LookupFunc, key string, target *bool) {
	value, ok := lookup(key)
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		*target = true
	case "false", "0", "no":
		*target = false
	}
}
