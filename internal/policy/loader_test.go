package policy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ExpandsProjectDir(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, ".icu-policy.yml")
	doc := "version: 1\ndefault_action: block\nmax_risk: low\nfile_access:\n  deny:\n    - \"${PROJECT_DIR}/secrets/**\"\n"
	if err := os.WriteFile(policyPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(policyPath, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := dir + "/secrets/**"
	if len(p.FileAccess.Deny) != 1 || p.FileAccess.Deny[0] != want {
		t.Errorf("expected expanded deny pattern %q, got %v", want, p.FileAccess.Deny)
	}
	if p.DefaultAction != ActionBlock {
		t.Errorf("expected default_action block, got %q", p.DefaultAction)
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, ".icu-policy.yml")
	doc := "version: 1\nnot_a_real_field: true\n"
	if err := os.WriteFile(policyPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(policyPath, dir); err == nil {
		t.Error("expected Load to reject an unknown top-level field")
	}
}

func TestDiscover_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	p, path, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if path != "" {
		t.Errorf("expected no policy file to be found, got %q", path)
	}
	if p.DefaultAction != DefaultPolicy().DefaultAction {
		t.Error("expected fallback to DefaultPolicy")
	}
}

func TestDiscover_WalksUpDirectoryTree(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	doc := "version: 1\ndefault_action: block\n"
	if err := os.WriteFile(filepath.Join(root, ".icu-policy.yml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, path, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if path == "" {
		t.Error("expected to find the policy file walking up from nested dir")
	}
	if p.DefaultAction != ActionBlock {
		t.Errorf("expected default_action block, got %q", p.DefaultAction)
	}
}
