package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"statekeep/internal/logging"
)

const (
	// DefaultStorageRoot is the default location of the backup storage tree
	DefaultStorageRoot = "/var/lib/statekeep"
	// DefaultDirPermissions is the default permission for storage directories
	DefaultDirPermissions = 0o750
	// DefaultFilePermissions is the default permission for storage files
	DefaultFilePermissions = 0o600
)

// StorageRoot returns the storage root from the environment or the provided
// default. It returns an absolute path when possible.
func StorageRoot(defaultRoot string) string {
	if env := os.Getenv("STATEKEEP_STORAGE_ROOT"); env != "" {
		if abs, err := filepath.Abs(env); err == nil {
			return abs
		}
		return env
	}
	return defaultRoot
}

// EnsureDirectory creates the directory if it doesn't exist.
// It uses DefaultDirPermissions (0o750).
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// AtomicWriteFile writes data to a file atomically by first writing to a temp
// file and then renaming it to the target path. This ensures the file is never
// partially written.
func AtomicWriteFile(path string, data []byte, perm os.FileMode, logger *logging.Logger) error {
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			if logger != nil {
				logger.Warn("fsutil.cleanup_failed", "Failed to remove temp file", map[string]interface{}{
					"path":  tmpPath,
					"error": removeErr.Error(),
				})
			}
		}
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
