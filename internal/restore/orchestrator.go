package restore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"statekeep/internal/capability"
	"statekeep/internal/capture"
	"statekeep/internal/logging"
	"statekeep/internal/paths"
	"statekeep/internal/report"
	"statekeep/internal/secrets"
	"statekeep/internal/statedoc"
	"statekeep/internal/targetlock"
	"statekeep/internal/template"
)

// Orchestrator replays a persisted StateDocument back onto a system. Each
// invocation walks the phase machine LOADED → VALIDATED → CAPTURED-LOADED →
// APPLYING → {COMPLETED, PARTIALLY-FAILED}; fatal checks happen strictly
// before APPLYING, and once applying starts one rule's failure never stops
// the remaining rules.
type Orchestrator struct {
	capabilities capability.Set
	keys         *secrets.KeyCache
	locks        *targetlock.Registry
	logger       *logging.Logger
}

// NewOrchestrator creates a restore orchestrator
func NewOrchestrator(capabilities capability.Set, keys *secrets.KeyCache, locks *targetlock.Registry, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		capabilities: capabilities,
		keys:         keys,
		locks:        locks,
		logger:       logger,
	}
}

// Run restores the document's values through the template's rule types. The
// returned error is non-nil only for fatal pre-apply conditions (validation,
// version mismatch, document mismatch) or internal failures; per-rule apply
// failures are collected into the result instead.
func (o *Orchestrator) Run(ctx context.Context, tpl *template.Template, doc *statedoc.StateDocument, opts Options) (*report.Result, error) {
	result := report.NewResult(report.OperationRestore, tpl.Name)
	phase := PhaseLoaded
	o.logPhase(result.RunID, phase)

	// VALIDATED: template must be sound and its version must equal the one
	// that produced the document. Both checks happen before any write.
	if validationErrors := tpl.Validate(); len(validationErrors) > 0 {
		return nil, template.TemplateValidationError{
			Template: tpl.Name,
			Errors:   validationErrors,
		}
	}
	if tpl.Version != doc.TemplateVersion {
		return nil, VersionMismatchError{
			Template:        tpl.Name,
			TemplateVersion: tpl.Version,
			DocumentVersion: doc.TemplateVersion,
		}
	}
	phase = PhaseValidated
	o.logPhase(result.RunID, phase)

	// CAPTURED-LOADED: the document must belong to this template
	if doc.TemplateName != tpl.Name {
		return nil, EngineError{
			Cause: fmt.Errorf("state document belongs to template %q, not %q", doc.TemplateName, tpl.Name),
		}
	}
	phase = PhaseCapturedLoaded
	o.logPhase(result.RunID, phase)

	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	if opts.RuleTimeout <= 0 {
		opts.RuleTimeout = DefaultOptions().RuleTimeout
	}

	phase = PhaseApplying
	o.logPhase(result.RunID, phase)

	result.Total = len(tpl.Rules)

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Workers)

	for _, rule := range tpl.Rules {
		value, present := doc.Values[rule.ID]

		// MISSING (or never captured) is skipped, not failed
		if !present || value.Missing {
			mu.Lock()
			result.Missing++
			mu.Unlock()
			continue
		}

		// Cancellation stops scheduling; rules already in flight finish
		if err := ctx.Err(); err != nil {
			mu.Lock()
			result.AddFailure(rule.ID, fmt.Errorf("run canceled before rule was scheduled: %w", err))
			mu.Unlock()
			continue
		}

		rule := rule
		group.Go(func() error {
			err := o.applyRule(groupCtx, rule, value, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.AddFailure(rule.ID, err)
				o.logger.Warn("restore.rule.failed", "Rule apply failed", map[string]interface{}{
					"run_id":  result.RunID,
					"rule_id": rule.ID,
					"error":   err.Error(),
				})
				return nil
			}

			result.Succeeded++
			o.logger.Debug("restore.rule.done", "Rule applied", map[string]interface{}{
				"run_id":  result.RunID,
				"rule_id": rule.ID,
			})
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, EngineError{Cause: err}
	}

	result.Duration = time.Since(result.StartedAt)

	if result.Completed() {
		phase = PhaseCompleted
	} else {
		phase = PhasePartiallyFailed
	}
	o.logPhase(result.RunID, phase)

	o.logger.Info("restore.run.finished", "Restore run finished", map[string]interface{}{
		"run_id":    result.RunID,
		"template":  tpl.Name,
		"phase":     string(phase),
		"succeeded": result.Succeeded,
		"missing":   result.Missing,
		"failed":    len(result.Failures),
	})

	return result, nil
}

// applyRule writes one captured value back through the rule type's inverse
// handler, decrypting sensitive values first. The write is serialized against
// other rules targeting the same physical location.
func (o *Orchestrator) applyRule(ctx context.Context, rule template.CaptureRule, value statedoc.RuleValue, opts Options) error {
	handler, err := o.capabilities.ForType(rule.Type)
	if err != nil {
		return err
	}

	payload := value.Value
	if value.Encrypted != nil {
		plaintext, err := o.keys.Unprotect(*value.Encrypted)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(plaintext, &payload); err != nil {
			return fmt.Errorf("failed to decode decrypted value: %w", err)
		}
	}

	release := o.locks.Acquire(lockKey(rule))
	defer release()

	ruleCtx, cancel := context.WithTimeout(ctx, opts.RuleTimeout)
	defer cancel()

	if err := writeWithDeadline(ruleCtx, handler, rule.Source, payload); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return capture.TimeoutError{RuleID: rule.ID, Timeout: opts.RuleTimeout}
		}
		return err
	}

	return nil
}

// writeWithDeadline invokes the handler in its own goroutine and waits on the
// context, so a capability that never observes ctx cannot block the worker
// past the rule deadline. A write still in flight at expiry leaves the target
// indeterminate, and the rule is reported failed.
func writeWithDeadline(ctx context.Context, handler capability.ReadWriter, locator string, value capability.Value) error {
	results := make(chan error, 1)
	go func() {
		results <- handler.Write(ctx, locator, value)
	}()

	select {
	case err := <-results:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// lockKey identifies the physical target a rule writes to. File locators are
// normalized to their subsystem form so native and subsystem spellings of the
// same file serialize on one lock.
func lockKey(rule template.CaptureRule) string {
	source := rule.Source
	if rule.Type == template.RuleFilePath {
		if translated, err := paths.ToSubsystemPath(source); err == nil {
			source = translated
		}
	}
	return string(rule.Type) + "|" + source
}

func (o *Orchestrator) logPhase(runID string, phase Phase) {
	o.logger.Debug("restore.phase", "Restore phase entered", map[string]interface{}{
		"run_id": runID,
		"phase":  string(phase),
	})
}
