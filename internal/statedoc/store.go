package statedoc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"statekeep/internal/fsutil"
	"statekeep/internal/logging"
	"statekeep/internal/paths"
)

// stateSubdir is the logical directory holding state documents inside each
// storage tree
const stateSubdir = "state"

// Store persists state documents under the resolved storage tree
type Store struct {
	resolver *paths.Resolver
	logger   *logging.Logger
}

// NewStore creates a state document store backed by the given resolver
func NewStore(resolver *paths.Resolver, logger *logging.Logger) *Store {
	return &Store{
		resolver: resolver,
		logger:   logger,
	}
}

// DocumentPath returns the physical location of a template's state document
func (s *Store) DocumentPath(templateName string, scope paths.Scope, machineID string) (string, error) {
	logical := stateSubdir + "/" + templateName + ".json"
	return s.resolver.Resolve(logical, scope, machineID)
}

// Save writes the document atomically to its resolved location
func (s *Store) Save(doc *StateDocument, scope paths.Scope) error {
	path, err := s.DocumentPath(doc.TemplateName, scope, doc.MachineID)
	if err != nil {
		return err
	}

	if err := fsutil.EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state document: %w", err)
	}

	if err := fsutil.AtomicWriteFile(path, data, fsutil.DefaultFilePermissions, s.logger); err != nil {
		return err
	}

	s.logger.Info("statedoc.saved", "State document saved", map[string]interface{}{
		"template": doc.TemplateName,
		"version":  doc.TemplateVersion,
		"path":     path,
		"rules":    len(doc.Values),
	})

	return nil
}

// Load reads a template's state document from its resolved location
func (s *Store) Load(templateName string, scope paths.Scope, machineID string) (*StateDocument, error) {
	path, err := s.DocumentPath(templateName, scope, machineID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is produced by the resolver
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no state document for template %q: %w", templateName, err)
		}
		return nil, fmt.Errorf("failed to read state document: %w", err)
	}

	var doc StateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse state document: %w", err)
	}
	if doc.TemplateName == "" || doc.TemplateVersion < 1 {
		return nil, fmt.Errorf("state document at %s is missing template identity", path)
	}

	s.logger.Debug("statedoc.loaded", "State document loaded", map[string]interface{}{
		"template": doc.TemplateName,
		"version":  doc.TemplateVersion,
		"path":     path,
	})

	return &doc, nil
}

// Exists checks whether a state document is present for the template
func (s *Store) Exists(templateName string, scope paths.Scope, machineID string) bool {
	path, err := s.DocumentPath(templateName, scope, machineID)
	if err != nil {
		return false
	}
	return fsutil.FileExists(path)
}
