package restore

import (
	"fmt"
	"time"
)

// Phase is a stage of one restore invocation's state machine
type Phase string

const (
	// PhaseLoaded means template and state document handles are present
	PhaseLoaded Phase = "LOADED"
	// PhaseValidated means the template passed validation and the version gate
	PhaseValidated Phase = "VALIDATED"
	// PhaseCapturedLoaded means the state document was checked against the template
	PhaseCapturedLoaded Phase = "CAPTURED-LOADED"
	// PhaseApplying means rule values are being written back
	PhaseApplying Phase = "APPLYING"
	// PhaseCompleted means every non-MISSING rule succeeded
	PhaseCompleted Phase = "COMPLETED"
	// PhasePartiallyFailed means at least one rule failed to apply
	PhasePartiallyFailed Phase = "PARTIALLY-FAILED"
)

// VersionMismatchError is fatal for a restore run: the state document was
// captured under a different template version. It occurs before APPLYING, so
// no write has happened.
type VersionMismatchError struct {
	Template        string
	TemplateVersion int
	DocumentVersion int
}

func (e VersionMismatchError) Error() string {
	return fmt.Sprintf("template %q is at version %d but state document was captured under version %d",
		e.Template, e.TemplateVersion, e.DocumentVersion)
}

// EngineError is an unexpected internal failure, fatal for the whole
// operation and never swallowed.
type EngineError struct {
	Cause error
}

func (e EngineError) Error() string {
	return fmt.Sprintf("restore engine failure: %v", e.Cause)
}

func (e EngineError) Unwrap() error {
	return e.Cause
}

// Options configures one restore run
type Options struct {
	// Workers bounds the number of rules applied concurrently
	Workers int
	// RuleTimeout bounds each rule's write into external state
	RuleTimeout time.Duration
}

// DefaultOptions returns restore options with standard bounds
func DefaultOptions() Options {
	return Options{
		Workers:     4,
		RuleTimeout: 30 * time.Second,
	}
}
