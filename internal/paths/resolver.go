package paths

import (
	"path"
	"strings"
)

const (
	// SharedDirName is the subtree holding configuration common to all machines
	SharedDirName = "shared"
	// MachinesDirName is the subtree holding per-machine configuration
	MachinesDirName = "machines"
	// subsystemMountPrefix is where native drives appear inside the
	// virtualized POSIX subsystem
	subsystemMountPrefix = "/mnt/"
)

// Resolver maps logical paths onto the physical storage tree and translates
// between native and virtualized-subsystem path forms. All mappings are pure
// string operations; Resolve never touches the filesystem.
type Resolver struct {
	root string
}

// NewResolver creates a resolver rooted at the given storage directory
func NewResolver(root string) *Resolver {
	return &Resolver{root: strings.TrimRight(root, "/")}
}

// Root returns the storage root this resolver maps into
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a logical path plus scope and machine id to a physical path
// under the storage root. Identical inputs always yield the identical output.
func (r *Resolver) Resolve(logical string, scope Scope, machineID string) (string, error) {
	cleaned, err := cleanLogical(logical)
	if err != nil {
		return "", err
	}

	switch scope {
	case ScopeShared:
		return path.Join(r.root, SharedDirName, cleaned), nil
	case ScopeMachine:
		if machineID == "" {
			return "", PathResolutionError{Path: logical, Reason: "machine scope requires a machine id"}
		}
		if strings.ContainsAny(machineID, "/\\") {
			return "", PathResolutionError{Path: logical, Reason: "machine id must not contain path separators"}
		}
		return path.Join(r.root, MachinesDirName, machineID, cleaned), nil
	default:
		return "", PathResolutionError{Path: logical, Reason: "unknown scope '" + scope.String() + "'"}
	}
}

// ReverseLookup recovers the logical identity of a physical path previously
// produced by Resolve. The recovered Logical is the normalized form Resolve
// maps through, so a backslash-spelled input round-trips to its forward-slash
// equivalent; callers comparing against an original spelling must normalize
// both sides.
func (r *Resolver) ReverseLookup(physical string) (Identity, error) {
	rel, ok := strings.CutPrefix(physical, r.root+"/")
	if !ok {
		return Identity{}, PathResolutionError{Path: physical, Reason: "outside storage root"}
	}

	tree, rest, ok := strings.Cut(rel, "/")
	if !ok || rest == "" {
		return Identity{}, PathResolutionError{Path: physical, Reason: "no logical path component"}
	}

	switch tree {
	case SharedDirName:
		return Identity{Logical: rest, Scope: ScopeShared}, nil
	case MachinesDirName:
		machineID, logical, ok := strings.Cut(rest, "/")
		if !ok || logical == "" {
			return Identity{}, PathResolutionError{Path: physical, Reason: "no logical path component"}
		}
		return Identity{Logical: logical, Scope: ScopeMachine, MachineID: machineID}, nil
	default:
		return Identity{}, PathResolutionError{Path: physical, Reason: "unknown tree '" + tree + "'"}
	}
}

// ToSubsystemPath translates a native absolute path with a drive-letter prefix
// into its location inside the virtualized POSIX subsystem mount. The drive
// letter is normalized to lower case.
func ToSubsystemPath(native string) (string, error) {
	if len(native) < 2 || native[1] != ':' || !isDriveLetter(native[0]) {
		return "", PathResolutionError{Path: native, Reason: "not a native drive-letter path"}
	}

	drive := strings.ToLower(string(native[0]))
	rest := strings.ReplaceAll(native[2:], "\\", "/")
	rest = strings.TrimPrefix(rest, "/")

	if rest == "" {
		return subsystemMountPrefix + drive, nil
	}
	return subsystemMountPrefix + drive + "/" + rest, nil
}

// ToNativePath translates a virtualized-subsystem mount path back into the
// native drive-letter form. Inverse of ToSubsystemPath.
func ToNativePath(subsystem string) (string, error) {
	rel, ok := strings.CutPrefix(subsystem, subsystemMountPrefix)
	if !ok || rel == "" {
		return "", PathResolutionError{Path: subsystem, Reason: "not a subsystem mount path"}
	}

	drive, rest, _ := strings.Cut(rel, "/")
	if len(drive) != 1 || !isDriveLetter(drive[0]) {
		return "", PathResolutionError{Path: subsystem, Reason: "mount point is not a drive letter"}
	}

	native := strings.ToUpper(drive) + ":\\"
	if rest != "" {
		native += strings.ReplaceAll(rest, "/", "\\")
	}
	return native, nil
}

// cleanLogical validates and normalizes a logical path to a clean relative
// forward-slash form.
func cleanLogical(logical string) (string, error) {
	if logical == "" {
		return "", PathResolutionError{Path: logical, Reason: "empty logical path"}
	}

	normalized := strings.ReplaceAll(logical, "\\", "/")
	normalized = strings.TrimPrefix(normalized, "/")
	cleaned := path.Clean(normalized)

	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", PathResolutionError{Path: logical, Reason: "logical path escapes the storage tree"}
	}

	return cleaned, nil
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
