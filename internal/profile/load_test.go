package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, root string, parts []string, content string) {
	t.Helper()
	dir := filepath.Join(append([]string{root}, parts...)...)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoadEffective_MachineOverridesShared(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, []string{"shared"}, `{"log_level":"info","workers":"4"}`)
	writeConfig(t, root, []string{"machines", "M1"}, `{"workers":"8"}`)

	got, err := LoadEffective(root, "M1")
	if err != nil {
		t.Fatalf("LoadEffective() error = %v", err)
	}

	if value, _ := got.Get("workers"); value != "8" {
		t.Errorf("workers = %q, want machine override 8", value)
	}
	if value, _ := got.Get("log_level"); value != "info" {
		t.Errorf("log_level = %q, want shared fallback info", value)
	}
}

func TestLoadEffective_MissingFilesAreEmpty(t *testing.T) {
	got, err := LoadEffective(t.TempDir(), "M1")
	if err != nil {
		t.Fatalf("LoadEffective() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LoadEffective() = %v, want empty profile", got)
	}
}

func TestLoadEffective_MalformedConfig(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, []string{"shared"}, "not json")

	if _, err := LoadEffective(root, "M1"); err == nil {
		t.Error("LoadEffective() should fail on malformed config")
	}
}
