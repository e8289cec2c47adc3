package config

import "time"

// Default values for configuration fields.
const (
	// Tree defaults
	DefaultTreePath         = "data.xml"
	DefaultTreeMaxFileSize  = 10 * 1024 * 1024 // 10MB
	DefaultTreeMaxDepth     = 64
	DefaultDebounceInterval = 250 * time.Millisecond

	// Solutions defaults
	DefaultSolutionsPath = "solutions.xml"
	DefaultSolutionsSort = "none"

	// Archive defaults
	DefaultArchiveBackend       = "sqlite"
	DefaultArchiveSQLitePath    = "data/archive.db"
	DefaultArchiveSQLiteDriver  = "sqlite"
	DefaultArchiveMaxOpenConns  = 4
	DefaultArchiveBusyTimeout   = 5 * time.Second
	DefaultArchivePruneSchedule = "0 4 * * *"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// Metrics defaults
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "vehicle"
	DefaultMetricsSubsystem     = "configurator"

	// Tracing defaults
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "vehicle-configurator"
	DefaultTracingTimeout     = 10 * time.Second
)

// ApplyDefaults fills every unset field of cfg with its default value.
// Booleans are left alone; their zero value is the default.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Tree defaults
	if cfg.Tree.Path == "" {
		cfg.Tree.Path = DefaultTreePath
	}
	if cfg.Tree.MaxFileSize == 0 {
		cfg.Tree.MaxFileSize = DefaultTreeMaxFileSize
	}
	if cfg.Tree.MaxDepth == 0 {
		cfg.Tree.MaxDepth = DefaultTreeMaxDepth
	}
	if cfg.Tree.DebounceInterval == 0 {
		cfg.Tree.DebounceInterval = DefaultDebounceInterval
	}

	// Solutions defaults
	if cfg.Solutions.Path == "" {
		cfg.Solutions.Path = DefaultSolutionsPath
	}
	if cfg.Solutions.Sort == "" {
		cfg.Solutions.Sort = DefaultSolutionsSort
	}

	applyArchiveDefaults(&cfg.Archive)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyArchiveDefaults(cfg *ArchiveConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultArchiveBackend
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultArchiveSQLitePath
	}
	if cfg.SQLite.Driver == "" {
		cfg.SQLite.Driver = DefaultArchiveSQLiteDriver
	}
	if cfg.SQLite.MaxOpenConns == 0 {
		cfg.SQLite.MaxOpenConns = DefaultArchiveMaxOpenConns
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultArchiveBusyTimeout
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultArchivePruneSchedule
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
}

// DefaultConfig returns a configuration with every default applied.
// It is what the CLI runs with when no configuration file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
