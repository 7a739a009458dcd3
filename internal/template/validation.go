package template

import (
	"fmt"
	"strings"
)

// registryHives are the accepted registry locator prefixes
var registryHives = []string{
	"HKLM", "HKCU", "HKCR", "HKU", "HKCC",
	"HKEY_LOCAL_MACHINE", "HKEY_CURRENT_USER", "HKEY_CLASSES_ROOT",
	"HKEY_USERS", "HKEY_CURRENT_CONFIG",
}

// Validate checks the template against every template invariant: non-empty
// name, positive version, coherent scope, unique rule ids, known rule types,
// well-formed source locators and known transform operations.
func (t *Template) Validate() []ValidationError {
	var errors []ValidationError

	if t.Name == "" {
		errors = append(errors, ValidationError{
			Path:    "name",
			Message: "must not be empty",
		})
	}

	if t.Version < 1 {
		errors = append(errors, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("must be at least 1, got %d", t.Version),
		})
	}

	if !t.Scope.IsValid() {
		errors = append(errors, ValidationError{
			Path:    "scope",
			Message: fmt.Sprintf("must be 'shared' or 'machine', got '%s'", t.Scope),
		})
	}

	if len(t.Rules) == 0 {
		errors = append(errors, ValidationError{
			Path:    "rules",
			Message: "must contain at least one rule",
		})
	}

	errors = append(errors, t.validateRules()...)

	return errors
}

func (t *Template) validateRules() []ValidationError {
	var errors []ValidationError

	seen := make(map[string]bool, len(t.Rules))
	for i, rule := range t.Rules {
		path := fmt.Sprintf("rules[%d]", i)

		if rule.ID == "" {
			errors = append(errors, ValidationError{
				Path:    path + ".id",
				Message: "must not be empty",
			})
		} else if seen[rule.ID] {
			errors = append(errors, ValidationError{
				Path:    path + ".id",
				Message: fmt.Sprintf("duplicate rule id '%s'", rule.ID),
			})
		}
		seen[rule.ID] = true

		if !rule.Type.IsValid() {
			errors = append(errors, ValidationError{
				Path:    path + ".type",
				Message: fmt.Sprintf("unknown rule type '%s'", rule.Type),
			})
		} else if msg := validateLocator(rule.Type, rule.Source); msg != "" {
			errors = append(errors, ValidationError{
				Path:    path + ".source",
				Message: msg,
			})
		}

		if rule.Transform != nil {
			errors = append(errors, validateTransform(path, rule.Transform)...)
		}
	}

	return errors
}

// validateLocator checks that a source locator is well-formed for its rule
// type. It returns an empty string when the locator is acceptable.
func validateLocator(ruleType RuleType, source string) string {
	if source == "" {
		return "must not be empty"
	}

	switch ruleType {
	case RuleRegistryKey:
		hive, _, found := strings.Cut(source, `\`)
		if !found {
			return "registry locator must be '<hive>\\<subkey path>'"
		}
		for _, known := range registryHives {
			if strings.EqualFold(hive, known) {
				return ""
			}
		}
		return fmt.Sprintf("unknown registry hive '%s'", hive)

	case RuleFilePath:
		if isNativePath(source) || strings.HasPrefix(source, "/") {
			return ""
		}
		return "file locator must be a native drive path or an absolute subsystem path"

	case RuleApplicationSetting:
		app, setting, found := strings.Cut(source, "/")
		if !found || app == "" || setting == "" {
			return "application-setting locator must be '<application>/<setting>'"
		}
		return ""
	}

	return ""
}

func validateTransform(path string, tr *Transform) []ValidationError {
	var errors []ValidationError

	switch tr.Op {
	case TransformKeep, TransformDrop, TransformRedact:
	default:
		errors = append(errors, ValidationError{
			Path:    path + ".transform.op",
			Message: fmt.Sprintf("must be one of [%s %s %s], got '%s'", TransformKeep, TransformDrop, TransformRedact, tr.Op),
		})
	}

	if len(tr.Keys) == 0 {
		errors = append(errors, ValidationError{
			Path:    path + ".transform.keys",
			Message: "must list at least one key",
		})
	}

	return errors
}

// isNativePath reports whether the path has a drive-letter prefix
func isNativePath(p string) bool {
	if len(p) < 3 || p[1] != ':' {
		return false
	}
	c := p[0]
	if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return false
	}
	return p[2] == '\\' || p[2] == '/'
}
