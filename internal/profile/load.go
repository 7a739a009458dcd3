package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"statekeep/internal/paths"
)

// configFileName is the per-tree configuration file under the storage root
const configFileName = "config.json"

// LoadEffective reads the shared configuration and the machine-specific
// overrides from the storage tree and merges them into one effective profile.
// A missing file contributes an empty mapping.
func LoadEffective(storageRoot, machineID string) (ConfigProfile, error) {
	shared, err := readConfigMap(filepath.Join(storageRoot, paths.SharedDirName, configFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to load shared config: %w", err)
	}

	machine, err := readConfigMap(filepath.Join(storageRoot, paths.MachinesDirName, machineID, configFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to load machine config: %w", err)
	}

	return Merge(shared, machine), nil
}

// readConfigMap loads a flat key/value JSON file, treating absence as empty
func readConfigMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is constructed under the storage root
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return entries, nil
}
