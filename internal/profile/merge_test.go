package profile

import "testing"

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		shared   SharedConfig
		machine  MachineConfig
		expected ConfigProfile
	}{
		{
			name:     "machine overrides shared",
			shared:   SharedConfig{"A": "1", "B": "2"},
			machine:  MachineConfig{"B": "5", "C": "9"},
			expected: ConfigProfile{"A": "1", "B": "5", "C": "9"},
		},
		{
			name:     "empty machine",
			shared:   SharedConfig{"A": "1"},
			machine:  MachineConfig{},
			expected: ConfigProfile{"A": "1"},
		},
		{
			name:     "empty shared",
			shared:   SharedConfig{},
			machine:  MachineConfig{"A": "1"},
			expected: ConfigProfile{"A": "1"},
		},
		{
			name:     "both empty",
			shared:   SharedConfig{},
			machine:  MachineConfig{},
			expected: ConfigProfile{},
		},
		{
			name:     "nil inputs",
			shared:   nil,
			machine:  nil,
			expected: ConfigProfile{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.shared, tt.machine)

			if len(got) != len(tt.expected) {
				t.Fatalf("Merge() has %d entries, want %d", len(got), len(tt.expected))
			}
			for key, want := range tt.expected {
				if value, ok := got.Get(key); !ok || value != want {
					t.Errorf("Merge()[%q] = %q (present=%v), want %q", key, value, ok, want)
				}
			}
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	shared := SharedConfig{"A": "1", "B": "2"}
	machine := MachineConfig{"B": "5"}

	Merge(shared, machine)

	if shared["B"] != "2" {
		t.Errorf("shared input mutated: B = %q", shared["B"])
	}
	if len(machine) != 1 || machine["B"] != "5" {
		t.Errorf("machine input mutated: %v", machine)
	}
}

func TestMerge_Deterministic(t *testing.T) {
	shared := SharedConfig{"A": "1", "B": "2", "C": "3"}
	machine := MachineConfig{"B": "9"}

	first := Merge(shared, machine)
	second := Merge(shared, machine)

	for key, value := range first {
		if second[key] != value {
			t.Errorf("Merge() not deterministic for key %q", key)
		}
	}
}
