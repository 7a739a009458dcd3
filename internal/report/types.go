package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Operation identifies which engine produced a result
type Operation string

const (
	// OperationCapture is a template capture run
	OperationCapture Operation = "capture"
	// OperationRestore is a template restore run
	OperationRestore Operation = "restore"
)

// RuleFailure attributes one non-success outcome to a rule id and cause
type RuleFailure struct {
	RuleID string `json:"rule_id"`
	Reason string `json:"reason"`
}

// Result is the stable contract surfaced to any CLI or automation layer:
// totals, failed rule ids with reasons, and the MISSING count.
type Result struct {
	RunID        string        `json:"run_id"`
	Operation    Operation     `json:"operation"`
	TemplateName string        `json:"template_name"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Total        int           `json:"total"`
	Succeeded    int           `json:"succeeded"`
	Missing      int           `json:"missing"`
	Failures     []RuleFailure `json:"failures,omitempty"`
}

// NewResult creates a result with a fresh run id
func NewResult(op Operation, templateName string) *Result {
	return &Result{
		RunID:        uuid.NewString(),
		Operation:    op,
		TemplateName: templateName,
		StartedAt:    time.Now().UTC(),
	}
}

// AddFailure records a failed rule
func (r *Result) AddFailure(ruleID string, err error) {
	r.Failures = append(r.Failures, RuleFailure{
		RuleID: ruleID,
		Reason: err.Error(),
	})
}

// FailedRuleIDs returns the failed rule ids in sorted order
func (r *Result) FailedRuleIDs() []string {
	ids := make([]string, 0, len(r.Failures))
	for _, failure := range r.Failures {
		ids = append(ids, failure.RuleID)
	}
	sort.Strings(ids)
	return ids
}

// Completed reports whether every non-MISSING rule succeeded
func (r *Result) Completed() bool {
	return len(r.Failures) == 0
}

// Summary renders a one-line human-readable outcome
func (r *Result) Summary() string {
	status := "completed"
	if !r.Completed() {
		status = "partially failed"
	}
	return fmt.Sprintf("%s of %q %s: %d/%d rules succeeded, %d missing, %d failed",
		r.Operation, r.TemplateName, status, r.Succeeded, r.Total, r.Missing, len(r.Failures))
}
