// Package config loads jobpulse settings from the TOML config file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds all jobpulse configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Analysis AnalysisConfig `toml:"analysis"`
}

// GeneralConfig holds data location and caching preferences.
type GeneralConfig struct {
	DataDir         string `toml:"data_dir,omitempty"`
	Company         string `toml:"company"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

// AnalysisConfig holds the analytical knobs.
type AnalysisConfig struct {
	ActiveJobRecencyDays    int     `toml:"active_job_recency_days"`
	ActiveStaffMonths       int     `toml:"active_staff_recency_months"`
	RecencyHalfLifeMonths   int     `toml:"recency_half_life_months"`
	SevereOverrunMultiplier float64 `toml:"severe_overrun_multiplier"`
	WeeksInWindow           int     `toml:"weeks_in_window"`
	UtilTarget              float64 `toml:"util_target"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Company:         "SG",
			CacheTTLSeconds: 3600,
		},
		Analysis: AnalysisConfig{
			ActiveJobRecencyDays:    21,
			ActiveStaffMonths:       6,
			RecencyHalfLifeMonths:   6,
			SevereOverrunMultiplier: 1.2,
			WeeksInWindow:           4,
			UtilTarget:              0.75,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jobpulse")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "jobpulse")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file and applies environment overrides. A missing
// file yields the defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return applyEnv(cfg), nil
}

// applyEnv layers environment variables over the file values. The variable
// names match the original deployment scripts.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	envInt("CACHE_TTL_SECONDS", &cfg.General.CacheTTLSeconds)
	envInt("ACTIVE_JOB_RECENCY_DAYS", &cfg.Analysis.ActiveJobRecencyDays)
	envInt("ACTIVE_STAFF_RECENCY_MONTHS", &cfg.Analysis.ActiveStaffMonths)
	envInt("RECENCY_HALF_LIFE_MONTHS", &cfg.Analysis.RecencyHalfLifeMonths)
	return cfg
}

func envInt(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// CachePath returns the cache database location for a data directory.
func CachePath(dataDir string) string {
	return filepath.Join(dataDir, "cache", "jobpulse.db")
}
