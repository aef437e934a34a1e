package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Index.MemMB != 512 {
		t.Errorf("expected MemMB=512, got %d", cfg.Index.MemMB)
	}
	if cfg.Index.ReportMB != 200 {
		t.Errorf("expected ReportMB=200, got %d", cfg.Index.ReportMB)
	}
	if cfg.Search.Limit != 50 {
		t.Errorf("expected Limit=50, got %d", cfg.Search.Limit)
	}
	if cfg.Search.Offset != 0 {
		t.Errorf("expected Offset=0, got %d", cfg.Search.Offset)
	}
	if cfg.Search.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/findex.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil || cfg.Index.MemMB != 512 {
		t.Error("expected default config")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "findex.yaml")

	content := `
index:
  mem_mb: 64
search:
  limit: 10
  cache:
    enabled: true
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Index.MemMB != 64 {
		t.Errorf("expected MemMB=64, got %d", cfg.Index.MemMB)
	}
	// Untouched keys keep their defaults.
	if cfg.Index.ReportMB != 200 {
		t.Errorf("expected ReportMB=200, got %d", cfg.Index.ReportMB)
	}
	if cfg.Search.Limit != 10 {
		t.Errorf("expected Limit=10, got %d", cfg.Search.Limit)
	}
	if !cfg.Search.Cache.Enabled {
		t.Error("expected cache enabled")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "findex.yaml")
	if err := os.WriteFile(configPath, []byte("index: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	content := "search:\n  limit: 7\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "findex.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.Limit != 7 {
		t.Errorf("expected Limit=7, got %d", cfg.Search.Limit)
	}

	cfg, err = LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.Limit != 50 {
		t.Errorf("expected default Limit=50, got %d", cfg.Search.Limit)
	}
}

func TestCachePath(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.CachePath("/idx"); got != filepath.Join("/idx", "cache.db") {
		t.Errorf("CachePath = %q", got)
	}
	cfg.Search.Cache.Path = "/elsewhere/c.db"
	if got := cfg.CachePath("/idx"); got != "/elsewhere/c.db" {
		t.Errorf("CachePath override = %q", got)
	}
}
