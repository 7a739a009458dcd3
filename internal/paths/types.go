package paths

// Scope determines which storage subtree a logical path resolves into
type Scope string

const (
	// ScopeShared resolves under the shared subtree used by all machines
	ScopeShared Scope = "shared"
	// ScopeMachine resolves under the subtree of a specific machine
	ScopeMachine Scope = "machine"
)

// IsValid checks if a scope value is valid
func (s Scope) IsValid() bool {
	return s == ScopeShared || s == ScopeMachine
}

// String returns the string representation of a Scope
func (s Scope) String() string {
	return string(s)
}

// Identity is the logical identity recovered by a reverse lookup. Logical is
// always in normalized form: forward slashes, no leading slash, cleaned.
type Identity struct {
	Logical   string
	Scope     Scope
	MachineID string
}

// PathResolutionError indicates a logical path could not be mapped into any
// known tree
type PathResolutionError struct {
	Path   string
	Reason string
}

func (e PathResolutionError) Error() string {
	return "cannot resolve path " + e.Path + ": " + e.Reason
}
