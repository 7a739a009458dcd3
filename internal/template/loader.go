package template

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load parses a template document and validates it. It returns a
// TemplateValidationError when the document violates any template invariant;
// in that case no capture or restore work has begun.
func Load(data []byte) (*Template, error) {
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse template YAML: %w", err)
	}

	if validationErrors := tpl.Validate(); len(validationErrors) > 0 {
		return nil, TemplateValidationError{
			Template: tpl.Name,
			Errors:   validationErrors,
		}
	}

	return &tpl, nil
}

// LoadFile loads and validates a template document from disk
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return Load(data)
}

// ListDir returns the template files (*.yaml, *.yml) found in dir, sorted by
// name. A missing directory yields an empty list.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}
