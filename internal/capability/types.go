package capability

import (
	"context"
	"fmt"

	"statekeep/internal/template"
)

// Value is the typed result of reading a locator. Registry subtrees and
// multi-file globs are map[string]interface{} keyed by subpath; single files
// and application settings are strings.
type Value interface{}

// ReadWriter is the port a rule-type handler talks to. Concrete OS bindings
// implement it outside the core; tests substitute doubles.
type ReadWriter interface {
	// Read returns the value addressed by locator
	Read(ctx context.Context, locator string) (Value, error)
	// Write applies value to the target addressed by locator
	Write(ctx context.Context, locator string, value Value) error
}

// Set bundles one ReadWriter per rule type
type Set struct {
	Registry ReadWriter
	File     ReadWriter
	Setting  ReadWriter
}

// ForType returns the ReadWriter handling the given rule type
func (s Set) ForType(ruleType template.RuleType) (ReadWriter, error) {
	switch ruleType {
	case template.RuleRegistryKey:
		if s.Registry == nil {
			return nil, fmt.Errorf("no registry capability configured")
		}
		return s.Registry, nil
	case template.RuleFilePath:
		if s.File == nil {
			return nil, fmt.Errorf("no file capability configured")
		}
		return s.File, nil
	case template.RuleApplicationSetting:
		if s.Setting == nil {
			return nil, fmt.Errorf("no application-setting capability configured")
		}
		return s.Setting, nil
	default:
		return nil, fmt.Errorf("no capability for rule type '%s'", ruleType)
	}
}
