package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "configurator.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
tree:
  path: "models/line-2024.xml"
  watch: true
  debounce_interval: "500ms"

solutions:
  sort: "asc"

archive:
  enabled: true
  backend: "sqlite"
  sqlite:
    path: "./archive.db"
    driver: "sqlite3"
  retention:
    days: 30

telemetry:
  logging:
    level: "debug"
    format: "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Tree.Path != "models/line-2024.xml" {
		t.Errorf("Tree.Path = %q, want %q", cfg.Tree.Path, "models/line-2024.xml")
	}
	if !cfg.Tree.Watch {
		t.Error("Tree.Watch = false, want true")
	}
	if cfg.Tree.DebounceInterval != 500*time.Millisecond {
		t.Errorf("Tree.DebounceInterval = %s, want 500ms", cfg.Tree.DebounceInterval)
	}
	if cfg.Archive.SQLite.Driver != "sqlite3" {
		t.Errorf("Archive.SQLite.Driver = %q, want %q", cfg.Archive.SQLite.Driver, "sqlite3")
	}
	if cfg.Archive.Retention.Days != 30 {
		t.Errorf("Archive.Retention.Days = %d, want 30", cfg.Archive.Retention.Days)
	}

	// Defaults for fields the file left out.
	if cfg.Solutions.Path != DefaultSolutionsPath {
		t.Errorf("Solutions.Path = %q, want default %q", cfg.Solutions.Path, DefaultSolutionsPath)
	}
	if cfg.Tree.MaxDepth != DefaultTreeMaxDepth {
		t.Errorf("Tree.MaxDepth = %d, want default %d", cfg.Tree.MaxDepth, DefaultTreeMaxDepth)
	}
	if cfg.Archive.Retention.PruneSchedule != DefaultArchivePruneSchedule {
		t.Errorf("PruneSchedule = %q, want default", cfg.Archive.Retention.PruneSchedule)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeConfig(t, "tree: [not, a, mapping")
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}

	path = writeConfig(t, "solutions:\n  sort: random\n")
	_, err := LoadConfig(path)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Field != "solutions.sort" {
		t.Errorf("Field = %q, want solutions.sort", verr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
tree:
  path: "from-file.xml"
archive:
  enabled: true
  backend: "memory"
`)

	t.Setenv("VEHICLE_TREE_PATH", "from-env.xml")
	t.Setenv("VEHICLE_TREE_WATCH", "true")
	t.Setenv("VEHICLE_TREE_MAX_DEPTH", "not-a-number")
	t.Setenv("VEHICLE_ARCHIVE_RETENTION_MAX_RECORDS", "5000")
	t.Setenv("VEHICLE_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("VEHICLE_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}

	if cfg.Tree.Path != "from-env.xml" {
		t.Errorf("Tree.Path = %q, want env value", cfg.Tree.Path)
	}
	if !cfg.Tree.Watch {
		t.Error("Tree.Watch = false, want true from env")
	}
	if cfg.Tree.MaxDepth != DefaultTreeMaxDepth {
		t.Errorf("unparsable override changed MaxDepth to %d", cfg.Tree.MaxDepth)
	}
	if cfg.Archive.Retention.MaxRecords != 5000 {
		t.Errorf("MaxRecords = %d, want 5000", cfg.Archive.Retention.MaxRecords)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("SampleRatio = %g, want 0.25", cfg.Telemetry.Tracing.SampleRatio)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("VEHICLE_SOLUTIONS_PATH", "out/solutions.xml")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides(\"\") failed: %v", err)
	}
	if cfg.Tree.Path != DefaultTreePath {
		t.Errorf("Tree.Path = %q, want default", cfg.Tree.Path)
	}
	if cfg.Solutions.Path != "out/solutions.xml" {
		t.Errorf("Solutions.Path = %q, want env value", cfg.Solutions.Path)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	before := *cfg
	ApplyDefaults(cfg)
	if *cfg != before {
		t.Error("second ApplyDefaults() changed the configuration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"empty tree path", func(c *Config) { c.Tree.Path = " " }, "tree.path"},
		{"shallow max depth", func(c *Config) { c.Tree.MaxDepth = 3 }, "tree.max_depth"},
		{"negative debounce", func(c *Config) { c.Tree.DebounceInterval = -time.Second }, "tree.debounce_interval"},
		{"unknown backend", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Backend = "postgres"
		}, "archive.backend"},
		{"unknown driver", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.SQLite.Driver = "sqlite4"
		}, "archive.sqlite.driver"},
		{"bad cron", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Retention.PruneSchedule = "every day"
		}, "archive.retention.prune_schedule"},
		{"disabled archive is not checked", func(c *Config) { c.Archive.Backend = "postgres" }, ""},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "verbose" }, "telemetry.logging.level"},
		{"metrics path", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.Path = "metrics"
		}, "telemetry.metrics.path"},
		{"sample ratio", func(c *Config) {
			c.Telemetry.Tracing.Enabled = true
			c.Telemetry.Tracing.Sampler = "ratio"
			c.Telemetry.Tracing.SampleRatio = 1.5
		}, "telemetry.tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if verr.Errors[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Errors[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidationError_MultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tree.Path = ""
	cfg.Solutions.Sort = "up"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	if !strings.Contains(err.Error(), "validation failed with 2 errors") {
		t.Errorf("error message should count the errors: %s", err)
	}
}

func TestLoadSetsCurrent(t *testing.T) {
	SetCurrent(nil)
	t.Cleanup(func() { SetCurrent(nil) })

	if Current() != nil {
		t.Fatal("Current() before Load should be nil")
	}

	path := writeConfig(t, "tree:\n  path: \"first.xml\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if Current() != cfg {
		t.Error("Current() is not the loaded config")
	}

	other := writeConfig(t, "tree:\n  path: \"second.xml\"\n")
	if _, err := Load(other); err != nil {
		t.Fatalf("second Load() failed: %v", err)
	}
	if got := Current().Tree.Path; got != "second.xml" {
		t.Errorf("Tree.Path = %q, want second.xml", got)
	}

	// A failed load keeps the current config.
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) succeeded")
	}
	if got := Current().Tree.Path; got != "second.xml" {
		t.Errorf("failed load replaced the config: %q", got)
	}
}
