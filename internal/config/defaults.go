package config

const (
	defaultHost                = "localhost"
	defaultPort                = 4064
	defaultUsername            = "root"
	defaultPassword            = "omero"
	defaultPollIntervalSeconds = 60
	defaultBatchSize           = 100
	defaultChunkSizeBytes      = 1024 * 1024
	defaultNamespace           = "org.iscc.omero.sum"
	defaultStateDir            = "~/.local/share/isccd"
	defaultRequestTimeout      = 10
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Omero: Omero{
			Host:     defaultHost,
			Port:     defaultPort,
			Username: defaultUsername,
			Password: defaultPassword,
			Secure:   true,
		},
		Service: Service{
			PollIntervalSeconds: defaultPollIntervalSeconds,
			BatchSize:           defaultBatchSize,
			ChunkSizeBytes:      defaultChunkSizeBytes,
			Namespace:           defaultNamespace,
			StateDir:            defaultStateDir,
		},
		Notifications: Notifications{
			RequestTimeout: defaultRequestTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
