package capability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"statekeep/internal/fsutil"
	"statekeep/internal/paths"
)

// FileAccess is the filesystem-backed ReadWriter for file-path rules. Native
// drive-letter locators are translated into their subsystem mount form before
// touching the filesystem, so templates written against either path style work
// unchanged.
type FileAccess struct{}

// NewFileAccess creates a filesystem-backed file capability
func NewFileAccess() *FileAccess {
	return &FileAccess{}
}

// Read returns the content of the file addressed by locator. A locator with
// glob metacharacters yields a map of matched path to content; a plain locator
// yields the file content as a string.
func (f *FileAccess) Read(ctx context.Context, locator string) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	local, err := localPath(locator)
	if err != nil {
		return nil, err
	}

	if !strings.ContainsAny(local, "*?[") {
		data, err := os.ReadFile(local) // #nosec G304 -- locator comes from a validated template
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", locator, err)
		}
		return string(data), nil
	}

	matches, err := filepath.Glob(local)
	if err != nil {
		return nil, fmt.Errorf("bad glob %s: %w", locator, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("glob %s matched no files", locator)
	}

	files := make(map[string]interface{}, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(match) // #nosec G304 -- match is produced by the glob above
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", match, err)
		}
		files[match] = string(data)
	}

	return files, nil
}

// Write applies a value captured by Read back onto the filesystem
func (f *FileAccess) Write(ctx context.Context, locator string, value Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch v := value.(type) {
	case string:
		local, err := localPath(locator)
		if err != nil {
			return err
		}
		return writeFile(local, []byte(v))

	case map[string]interface{}:
		for target, content := range v {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, ok := content.(string)
			if !ok {
				return fmt.Errorf("unexpected content type %T for %s", content, target)
			}
			local, err := localPath(target)
			if err != nil {
				return err
			}
			if err := writeFile(local, []byte(text)); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unexpected value type %T for file locator %s", value, locator)
	}
}

// localPath converts a template locator into a path usable on this
// filesystem. Native drive-letter locators go through the subsystem
// translation; subsystem and plain absolute paths pass through unchanged.
func localPath(locator string) (string, error) {
	if len(locator) >= 2 && locator[1] == ':' {
		translated, err := paths.ToSubsystemPath(locator)
		if err != nil {
			return "", err
		}
		return translated, nil
	}
	return locator, nil
}

func writeFile(path string, data []byte) error {
	if err := fsutil.EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, fsutil.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
