package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	content := "depth: deep\nmax_file_size_mib: 5\ndisable_db: true\n"
	dir := t.TempDir()
	path := filepath.Join(dir, ".icu.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Depth != "deep" {
		t.Errorf("Depth = %q, want deep", cfg.Depth)
	}
	if cfg.MaxFileSizeMiB != 5 {
		t.Errorf("MaxFileSizeMiB = %d, want 5", cfg.MaxFileSizeMiB)
	}
	if !cfg.DisableDB {
		t.Error("expected DisableDB to be true")
	}
	// untouched fields keep their default
	if cfg.Workers != Defaults().Workers {
		t.Errorf("Workers = %d, want default %d", cfg.Workers, Defaults().Workers)
	}
}

func TestDiscover_WalksUpToConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".icu.yml"), []byte("depth: fast\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := Discover(nested)
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Error("expected to discover the config walking up")
	}
	if cfg.Depth != "fast" {
		t.Errorf("Depth = %q, want fast", cfg.Depth)
	}
}

func TestOverlay_EnvVarsOverrideConfig(t *testing.T) {
	cfg := Defaults()
	t.Setenv("ICU_DEPTH", "deep")
	t.Setenv("ICU_MAX_SIZE", "9")
	t.Setenv("ICU_NO_DB", "true")
	t.Setenv("ICU_POLICY", "/tmp/policy.yml")

	got := Overlay(cfg)
	if got.Depth != "deep" || got.MaxFileSizeMiB != 9 || !got.DisableDB || got.PolicyPath != "/tmp/policy.yml" {
		t.Errorf("overlay did not apply all env vars: %+v", got)
	}
}
