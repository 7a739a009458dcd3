package capability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"statekeep/internal/template"
)

func TestFileAccess_ReadSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	fa := NewFileAccess()
	value, err := fa.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	content, ok := value.(string)
	if !ok {
		t.Fatalf("Read() value type = %T, want string", value)
	}
	if content != `{"theme":"dark"}` {
		t.Errorf("Read() = %q", content)
	}
}

func TestFileAccess_ReadGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.conf", "b.conf", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	fa := NewFileAccess()
	value, err := fa.Read(context.Background(), filepath.Join(dir, "*.conf"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	files, ok := value.(map[string]interface{})
	if !ok {
		t.Fatalf("Read() value type = %T, want map", value)
	}
	if len(files) != 2 {
		t.Errorf("glob matched %d files, want 2", len(files))
	}
}

func TestFileAccess_ReadMissing(t *testing.T) {
	fa := NewFileAccess()

	if _, err := fa.Read(context.Background(), filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Read() on missing file should fail")
	}
	if _, err := fa.Read(context.Background(), filepath.Join(t.TempDir(), "*.none")); err == nil {
		t.Error("Read() on empty glob should fail")
	}
}

func TestFileAccess_WriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.json")

	fa := NewFileAccess()
	if err := fa.Write(context.Background(), path, "restored content"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	value, err := fa.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if value != "restored content" {
		t.Errorf("round trip = %q", value)
	}
}

func TestFileAccess_WriteGlobValue(t *testing.T) {
	dir := t.TempDir()

	files := map[string]interface{}{
		filepath.Join(dir, "one.conf"): "first",
		filepath.Join(dir, "two.conf"): "second",
	}

	fa := NewFileAccess()
	if err := fa.Write(context.Background(), filepath.Join(dir, "*.conf"), files); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	for path, want := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", path, data, want)
		}
	}
}

func TestFileAccess_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fa := NewFileAccess()
	if _, err := fa.Read(ctx, "/tmp/anything"); err == nil {
		t.Error("Read() with canceled context should fail")
	}
}

func TestSet_ForType(t *testing.T) {
	fa := NewFileAccess()
	set := Set{File: fa}

	if _, err := set.ForType(template.RuleFilePath); err != nil {
		t.Errorf("ForType(file-path) error = %v", err)
	}
	if _, err := set.ForType(template.RuleRegistryKey); err == nil {
		t.Error("ForType(registry-key) without binding should fail")
	}
	if _, err := set.ForType(template.RuleType("bogus")); err == nil {
		t.Error("ForType(bogus) should fail")
	}
}
