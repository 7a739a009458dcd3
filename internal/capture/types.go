package capture

import (
	"fmt"
	"time"
)

const (
	// DefaultWorkers is the default bound on concurrent rule handlers
	DefaultWorkers = 4
	// DefaultRuleTimeout bounds each call into external state
	DefaultRuleTimeout = 30 * time.Second
	// DefaultKeyID is the key id used for sensitive rules unless overridden
	DefaultKeyID = "primary"
)

// CaptureError is a per-rule capture failure. It never aborts the template
// run; the engine records MISSING for the rule and collects the failure.
//
//nolint:revive // exported name intentionally mirrors package name (capture.CaptureError)
type CaptureError struct {
	RuleID string
	Cause  error
}

func (e CaptureError) Error() string {
	return fmt.Sprintf("rule %q capture failed: %v", e.RuleID, e.Cause)
}

func (e CaptureError) Unwrap() error {
	return e.Cause
}

// TimeoutError indicates a rule's call into external state exceeded the
// caller-supplied timeout.
type TimeoutError struct {
	RuleID  string
	Timeout time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("rule %q timed out after %s", e.RuleID, e.Timeout)
}

// Options configures one capture run
type Options struct {
	// MachineID identifies the machine whose state is captured
	MachineID string
	// Workers bounds the number of rules processed concurrently
	Workers int
	// RuleTimeout bounds each rule's call into external state
	RuleTimeout time.Duration
	// KeyID selects the cached encryption key for sensitive rules
	KeyID string
}

// DefaultOptions returns capture options with standard bounds
func DefaultOptions(machineID string) Options {
	return Options{
		MachineID:   machineID,
		Workers:     DefaultWorkers,
		RuleTimeout: DefaultRuleTimeout,
		KeyID:       DefaultKeyID,
	}
}
