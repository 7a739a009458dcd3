package template

import (
	"fmt"

	"statekeep/internal/paths"
)

// RuleType selects the handler a capture rule dispatches to
type RuleType string

const (
	// RuleRegistryKey captures a registry subtree
	RuleRegistryKey RuleType = "registry-key"
	// RuleFilePath captures one file or a glob of files
	RuleFilePath RuleType = "file-path"
	// RuleApplicationSetting captures a setting through an external reader
	RuleApplicationSetting RuleType = "application-setting"
)

// IsValid checks if a rule type is one of the known handlers
func (t RuleType) IsValid() bool {
	switch t {
	case RuleRegistryKey, RuleFilePath, RuleApplicationSetting:
		return true
	default:
		return false
	}
}

// Transform operations applied to a captured value before storage
const (
	// TransformKeep keeps only the listed keys of a map value
	TransformKeep = "keep"
	// TransformDrop removes the listed keys from a map value
	TransformDrop = "drop"
	// TransformRedact replaces the listed keys' values with a placeholder
	TransformRedact = "redact"
)

// Transform is an optional value mapping applied to a rule's raw value
type Transform struct {
	Op   string   `yaml:"op"`
	Keys []string `yaml:"keys"`
}

// CaptureRule is one addressable unit within a template
type CaptureRule struct {
	ID        string     `yaml:"id"`
	Type      RuleType   `yaml:"type"`
	Source    string     `yaml:"source"`
	Sensitive bool       `yaml:"sensitive"`
	Transform *Transform `yaml:"transform,omitempty"`
}

// Template is a declarative description of what to capture and restore.
// Immutable once validated by Load.
type Template struct {
	Name    string        `yaml:"name"`
	Version int           `yaml:"version"`
	Scope   paths.Scope   `yaml:"scope"`
	Rules   []CaptureRule `yaml:"rules"`
}

// ValidationError represents a single template validation failure
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}

// TemplateValidationError aggregates every validation failure of a template
// document. Validation happens strictly before any capture or restore work,
// so a template that produces this error caused no side effects.
//
//nolint:revive // exported name intentionally mirrors package name (template.TemplateValidationError)
type TemplateValidationError struct {
	Template string
	Errors   []ValidationError
}

func (e TemplateValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("template %q invalid: %s", e.Template, e.Errors[0].Error())
	}

	msg := fmt.Sprintf("template %q invalid: %d errors:", e.Template, len(e.Errors))
	for _, err := range e.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}
