package config

import "sync"

var (
	currentMu sync.RWMutex
	current   *Config
)

// Load reads the configuration at path with VEHICLE_* overrides and makes
// it the process configuration. An empty path loads defaults. On failure
// the previous process configuration stays in place.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, err
	}
	SetCurrent(cfg)
	return cfg, nil
}

// Current returns the configuration set by the last successful Load, or
// nil when there was none.
func Current() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetCurrent replaces the process configuration.
func SetCurrent(cfg *Config) {
	currentMu.Lock()
	current = cfg
	currentMu.Unlock()
}
