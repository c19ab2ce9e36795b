package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	content := "addr: \":9000\"\nrequired_metrics:\n  - revenue\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr = %s, want :9000", cfg.Addr)
	}
	if cfg.FormType != "10-Q" {
		t.Errorf("form type default = %s, want 10-Q", cfg.FormType)
	}
	if cfg.SeriesQuarters != 8 {
		t.Errorf("series quarters default = %d, want 8", cfg.SeriesQuarters)
	}
	if len(cfg.RequiredMetrics) != 1 || cfg.RequiredMetrics[0] != "revenue" {
		t.Errorf("required metrics = %v", cfg.RequiredMetrics)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
