// Package config provides configuration management for the vehicle
// configurator.
//
// Configuration is read from a YAML file, completed with defaults, overridden
// from the environment and validated as a whole.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("configurator.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("configurator.yaml")
//
// An empty path to LoadConfigWithEnvOverrides starts from DefaultConfig.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention VEHICLE_SECTION_FIELD:
//
//   - VEHICLE_TREE_PATH overrides tree.path
//   - VEHICLE_ARCHIVE_SQLITE_DRIVER overrides archive.sqlite.driver
//   - VEHICLE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example
//
//	tree:
//	  path: data.xml
//	  watch: true
//	  debounce_interval: 500ms
//	solutions:
//	  path: solutions.xml
//	  sort: asc
//	archive:
//	  enabled: true
//	  backend: sqlite
//	  sqlite:
//	    path: data/archive.db
//	    driver: sqlite
//	  retention:
//	    days: 180
//	    prune_schedule: "0 4 * * *"
//	telemetry:
//	  logging:
//	    level: debug
//	  metrics:
//	    enabled: true
//
// # Process configuration
//
// Load reads a file and publishes the result; Current returns it:
//
//	cfg, err := config.Load("configurator.yaml")
//	if err != nil {
//	    return err
//	}
//
// Components take an explicit *Config rather than reading Current.
package config
