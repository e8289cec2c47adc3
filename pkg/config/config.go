package config

import "time"

// Config is the root configuration structure for the vehicle configurator.
// It contains the document locations, the audit archive and telemetry.
type Config struct {
	// Tree contains settings for the tree document: its location, parser
	// limits and watch mode.
	Tree TreeConfig `yaml:"tree"`

	// Solutions contains settings for the solutions document.
	Solutions SolutionsConfig `yaml:"solutions"`

	// Archive contains configuration for the audit archive of solution
	// events including backend selection and retention.
	Archive ArchiveConfig `yaml:"archive"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TreeConfig contains settings for the tree document.
type TreeConfig struct {
	// Path is the location of the tree document.
	// Default: "data.xml"
	Path string `yaml:"path"`

	// MaxFileSize is the largest document the parser accepts, in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxDepth is the deepest element nesting the parser accepts.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`

	// Watch makes the watch command reload the tree when the file changes
	// on disk and recheck the loaded solutions against it.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is how long file events are coalesced before a reload.
	// Default: 250ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// SolutionsConfig contains settings for the solutions document.
type SolutionsConfig struct {
	// Path is the location of the solutions document.
	// Default: "solutions.xml"
	Path string `yaml:"path"`

	// Sort is the price order applied to loaded solutions.
	// Options: "none", "asc", "desc"
	// Default: "none"
	Sort string `yaml:"sort"`
}

// ArchiveConfig controls the audit trail of solution events.
type ArchiveConfig struct {
	// Enabled turns on recording of built, saved, exported, removed and
	// stale events. Default: false
	Enabled bool `yaml:"enabled"`

	// Backend is "sqlite" (default) or "memory". The memory backend loses
	// its records when the command exits.
	Backend string `yaml:"backend"`

	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig locates and tunes the archive database.
type SQLiteConfig struct {
	// Default: "data/archive.db"
	Path string `yaml:"path"`

	// Driver is "sqlite" for modernc.org/sqlite or "sqlite3" for the cgo
	// mattn/go-sqlite3 driver. Default: "sqlite"
	Driver string `yaml:"driver"`

	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// WALMode switches the journal to write-ahead logging.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout bounds how long a write waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig bounds how much of the archive is kept.
type RetentionConfig struct {
	// Days drops records older than this many days. 0 keeps every record.
	Days int `yaml:"days"`

	// MaxRecords keeps only the newest records. 0 is no limit.
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is the cron spec on which watch prunes the archive.
	// Default: "0 4 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig groups logs, metrics and traces.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures the slog handler commands log through.
type LoggingConfig struct {
	// Level is one of debug, info (default), warn or error.
	Level string `yaml:"level"`

	// Format is json, text (default) or console.
	Format string `yaml:"format"`

	// AddSource records the calling file and line on every entry.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	// Enabled registers the collectors. Without it every recording call
	// is a no-op and watch serves no metrics.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the watch command serves metrics and health.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace and Subsystem prefix every metric name.
	// Defaults: "vehicle", "configurator"
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig configures OTLP span export for session operations.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampler is always (default), never or ratio.
	Sampler string `yaml:"sampler"`

	// SampleRatio is the sampled fraction, between 0 and 1, when Sampler
	// is ratio. Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector. Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Default: "vehicle-configurator"
	ServiceName string `yaml:"service_name"`

	// Insecure sends spans without TLS.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export. Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
