package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DATA_DIR", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("ACTIVE_JOB_RECENCY_DAYS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.Company != "SG" {
		t.Errorf("Company = %q, want SG", cfg.General.Company)
	}
	if cfg.General.CacheTTLSeconds != 3600 {
		t.Errorf("CacheTTLSeconds = %d, want 3600", cfg.General.CacheTTLSeconds)
	}
	if cfg.Analysis.ActiveJobRecencyDays != 21 {
		t.Errorf("ActiveJobRecencyDays = %d, want 21", cfg.Analysis.ActiveJobRecencyDays)
	}
	if cfg.Analysis.SevereOverrunMultiplier != 1.2 {
		t.Errorf("SevereOverrunMultiplier = %v, want 1.2", cfg.Analysis.SevereOverrunMultiplier)
	}
	if cfg.Analysis.UtilTarget != 0.75 {
		t.Errorf("UtilTarget = %v, want 0.75", cfg.Analysis.UtilTarget)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("DATA_DIR", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("ACTIVE_JOB_RECENCY_DAYS", "")

	cfgDir := filepath.Join(dir, "jobpulse")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "[general]\ndata_dir = \"/srv/jobdata\"\ncache_ttl_seconds = 60\n\n[analysis]\nactive_job_recency_days = 30\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.DataDir != "/srv/jobdata" {
		t.Errorf("DataDir = %q, want /srv/jobdata", cfg.General.DataDir)
	}
	if cfg.General.CacheTTLSeconds != 60 {
		t.Errorf("CacheTTLSeconds = %d, want 60", cfg.General.CacheTTLSeconds)
	}
	if cfg.Analysis.ActiveJobRecencyDays != 30 {
		t.Errorf("ActiveJobRecencyDays = %d, want 30", cfg.Analysis.ActiveJobRecencyDays)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("DATA_DIR", "/env/data")
	t.Setenv("CACHE_TTL_SECONDS", "120")
	t.Setenv("ACTIVE_JOB_RECENCY_DAYS", "")

	cfgDir := filepath.Join(dir, "jobpulse")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "[general]\ndata_dir = \"/file/data\"\ncache_ttl_seconds = 60\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.DataDir != "/env/data" {
		t.Errorf("DataDir = %q, want env override", cfg.General.DataDir)
	}
	if cfg.General.CacheTTLSeconds != 120 {
		t.Errorf("CacheTTLSeconds = %d, want env override 120", cfg.General.CacheTTLSeconds)
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DATA_DIR", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("ACTIVE_JOB_RECENCY_DAYS", "")

	cfg := DefaultConfig()
	cfg.General.DataDir = "/srv/jobdata"
	cfg.Analysis.WeeksInWindow = 2
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	if !Exists() {
		t.Fatal("config file missing after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.General.DataDir != "/srv/jobdata" {
		t.Errorf("DataDir = %q, want /srv/jobdata", got.General.DataDir)
	}
	if got.Analysis.WeeksInWindow != 2 {
		t.Errorf("WeeksInWindow = %d, want 2", got.Analysis.WeeksInWindow)
	}
}
