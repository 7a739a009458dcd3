package profile

// SharedConfig holds configuration entries common to all machines
type SharedConfig map[string]string

// MachineConfig holds configuration entries specific to one machine
type MachineConfig map[string]string

// ConfigProfile is the effective configuration after merging shared and
// machine entries
type ConfigProfile map[string]string

// Merge combines a shared baseline with machine-specific overrides. Machine
// entries win; shared entries fill the gaps. Inputs are never mutated and nil
// maps are treated as empty.
func Merge(shared SharedConfig, machine MachineConfig) ConfigProfile {
	merged := make(ConfigProfile, len(shared)+len(machine))

	for key, value := range shared {
		merged[key] = value
	}
	for key, value := range machine {
		merged[key] = value
	}

	return merged
}

// Get returns the effective value for key and whether it is present
func (p ConfigProfile) Get(key string) (string, bool) {
	value, ok := p[key]
	return value, ok
}
