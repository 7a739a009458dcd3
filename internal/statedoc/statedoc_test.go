package statedoc

import (
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"statekeep/internal/logging"
	"statekeep/internal/paths"
	"statekeep/internal/secrets"
)

func testLogger() *logging.Logger {
	return logging.NewWriterLogger(logging.LevelError, io.Discard)
}

func TestRuleValue_MarshalForms(t *testing.T) {
	tests := []struct {
		name     string
		value    RuleValue
		contains string
	}{
		{"missing", MissingValue(), `"MISSING"`},
		{"plain string", PlainValue("dark"), `"dark"`},
		{"plain map", PlainValue(map[string]interface{}{"k": "v"}), `"k":"v"`},
		{
			"encrypted",
			EncryptedValue(secrets.EncryptedField{Ciphertext: []byte{1}, Nonce: []byte{2}, KeyID: "k1"}),
			`"key_id":"k1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if !strings.Contains(string(data), tt.contains) {
				t.Errorf("Marshal() = %s, want it to contain %s", data, tt.contains)
			}
		})
	}
}

func TestRuleValue_UnmarshalRoundTrip(t *testing.T) {
	doc := StateDocument{
		TemplateName:    "workstation",
		TemplateVersion: 3,
		MachineID:       "M1",
		CapturedAt:      time.Now().UTC().Truncate(time.Second),
		Values: map[string]RuleValue{
			"theme":   PlainValue("dark"),
			"volume":  PlainValue(float64(40)),
			"secret":  EncryptedValue(secrets.EncryptedField{Ciphertext: []byte{1, 2}, Nonce: []byte{3}, KeyID: "k1"}),
			"broken":  MissingValue(),
			"subtree": PlainValue(map[string]interface{}{"Enabled": "1"}),
		},
	}

	data, err := json.Marshal(&doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var loaded StateDocument
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if loaded.TemplateVersion != 3 || loaded.MachineID != "M1" {
		t.Errorf("document identity lost: %+v", loaded)
	}
	if !loaded.Values["broken"].Missing {
		t.Error("missing marker lost in round trip")
	}
	if loaded.Values["secret"].Encrypted == nil {
		t.Fatal("encrypted field lost in round trip")
	}
	if loaded.Values["secret"].Encrypted.KeyID != "k1" {
		t.Errorf("encrypted key id = %q", loaded.Values["secret"].Encrypted.KeyID)
	}
	if loaded.Values["theme"].Value != "dark" {
		t.Errorf("plain value = %v", loaded.Values["theme"].Value)
	}
	if loaded.Values["secret"].Missing || loaded.Values["theme"].Missing {
		t.Error("non-missing values decoded as missing")
	}
}

func TestMissingRuleIDs(t *testing.T) {
	doc := StateDocument{
		Values: map[string]RuleValue{
			"a": PlainValue("x"),
			"b": MissingValue(),
			"c": MissingValue(),
		},
	}

	ids := doc.MissingRuleIDs()
	if len(ids) != 2 {
		t.Errorf("MissingRuleIDs() = %v, want 2 entries", ids)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	root := t.TempDir()
	store := NewStore(paths.NewResolver(root), testLogger())

	doc := &StateDocument{
		TemplateName:    "workstation",
		TemplateVersion: 1,
		MachineID:       "M1",
		CapturedAt:      time.Now().UTC(),
		Values: map[string]RuleValue{
			"theme": PlainValue("dark"),
		},
	}

	if err := store.Save(doc, paths.ScopeMachine); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !store.Exists("workstation", paths.ScopeMachine, "M1") {
		t.Error("Exists() = false after Save()")
	}

	loaded, err := store.Load("workstation", paths.ScopeMachine, "M1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.TemplateVersion != 1 || loaded.Values["theme"].Value != "dark" {
		t.Errorf("Load() = %+v", loaded)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(paths.NewResolver(t.TempDir()), testLogger())

	if _, err := store.Load("absent", paths.ScopeShared, ""); err == nil {
		t.Error("Load() of absent document should fail")
	}
	if store.Exists("absent", paths.ScopeShared, "") {
		t.Error("Exists() = true for absent document")
	}
}

func TestStore_ScopeSeparation(t *testing.T) {
	root := t.TempDir()
	store := NewStore(paths.NewResolver(root), testLogger())

	shared, err := store.DocumentPath("base", paths.ScopeShared, "")
	if err != nil {
		t.Fatalf("DocumentPath(shared) error = %v", err)
	}
	machine, err := store.DocumentPath("base", paths.ScopeMachine, "M1")
	if err != nil {
		t.Fatalf("DocumentPath(machine) error = %v", err)
	}

	if shared == machine {
		t.Error("shared and machine documents resolve to the same path")
	}
	if !strings.Contains(machine, "machines/M1") {
		t.Errorf("machine path %q does not contain the machine subtree", machine)
	}
}
