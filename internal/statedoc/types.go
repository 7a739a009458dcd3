package statedoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"statekeep/internal/secrets"
)

// missingMarker is the persisted form of a rule whose capture failed
const missingMarker = "MISSING"

// RuleValue is one entry of a StateDocument: a plain captured value, an
// encrypted field, or the MISSING marker.
type RuleValue struct {
	Value     interface{}
	Encrypted *secrets.EncryptedField
	Missing   bool
}

// PlainValue wraps a captured value
func PlainValue(v interface{}) RuleValue {
	return RuleValue{Value: v}
}

// EncryptedValue wraps a protected sensitive value
func EncryptedValue(field secrets.EncryptedField) RuleValue {
	return RuleValue{Encrypted: &field}
}

// MissingValue marks a rule whose capture failed
func MissingValue() RuleValue {
	return RuleValue{Missing: true}
}

// MarshalJSON encodes the value in its persisted form: the raw value, an
// encrypted-field object, or the literal string "MISSING".
func (v RuleValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Missing:
		return json.Marshal(missingMarker)
	case v.Encrypted != nil:
		return json.Marshal(v.Encrypted)
	default:
		return json.Marshal(v.Value)
	}
}

// UnmarshalJSON decodes the persisted form. An object carrying ciphertext,
// nonce and key_id is an encrypted field; the string "MISSING" is the missing
// marker; anything else is a plain value.
func (v *RuleValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if string(trimmed) == `"`+missingMarker+`"` {
		*v = MissingValue()
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return err
		}
		_, hasCiphertext := probe["ciphertext"]
		_, hasNonce := probe["nonce"]
		_, hasKeyID := probe["key_id"]
		if hasCiphertext && hasNonce && hasKeyID {
			var field secrets.EncryptedField
			if err := json.Unmarshal(trimmed, &field); err != nil {
				return fmt.Errorf("malformed encrypted field: %w", err)
			}
			*v = EncryptedValue(field)
			return nil
		}
	}

	var plain interface{}
	if err := json.Unmarshal(trimmed, &plain); err != nil {
		return err
	}
	*v = PlainValue(plain)
	return nil
}

// StateDocument is an immutable snapshot produced by one capture run. A new
// capture always produces a new document.
type StateDocument struct {
	TemplateName    string               `json:"template_name"`
	TemplateVersion int                  `json:"template_version"`
	MachineID       string               `json:"machine_id"`
	CapturedAt      time.Time            `json:"captured_at"`
	Values          map[string]RuleValue `json:"values"`
}

// MissingRuleIDs returns the ids recorded as MISSING
func (d *StateDocument) MissingRuleIDs() []string {
	var ids []string
	for id, value := range d.Values {
		if value.Missing {
			ids = append(ids, id)
		}
	}
	return ids
}
