package capture

import (
	"fmt"

	"statekeep/internal/capability"
	"statekeep/internal/template"
)

// redactedPlaceholder replaces values selected by a redact transform
const redactedPlaceholder = "[REDACTED]"

// applyTransform applies a rule's value mapping to the raw captured value.
// Transforms operate on map-shaped values (registry subtrees, file globs);
// applying one to a scalar value is a rule failure.
func applyTransform(tr *template.Transform, value capability.Value) (capability.Value, error) {
	if tr == nil {
		return value, nil
	}

	tree, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("transform %q requires a map value, got %T", tr.Op, value)
	}

	selected := make(map[string]bool, len(tr.Keys))
	for _, key := range tr.Keys {
		selected[key] = true
	}

	result := make(map[string]interface{}, len(tree))
	for key, entry := range tree {
		switch tr.Op {
		case template.TransformKeep:
			if selected[key] {
				result[key] = entry
			}
		case template.TransformDrop:
			if !selected[key] {
				result[key] = entry
			}
		case template.TransformRedact:
			if selected[key] {
				result[key] = redactedPlaceholder
			} else {
				result[key] = entry
			}
		default:
			return nil, fmt.Errorf("unknown transform op %q", tr.Op)
		}
	}

	return result, nil
}
