package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"statekeep/internal/capability"
	"statekeep/internal/logging"
	"statekeep/internal/report"
	"statekeep/internal/secrets"
	"statekeep/internal/statedoc"
	"statekeep/internal/template"
)

// Engine executes a validated template's rules against live system state and
// produces one StateDocument per run. Rules are mutually independent and are
// processed by a bounded set of workers; a rule's failure never aborts the
// run.
type Engine struct {
	capabilities capability.Set
	keys         *secrets.KeyCache
	logger       *logging.Logger
}

// NewEngine creates a capture engine
func NewEngine(capabilities capability.Set, keys *secrets.KeyCache, logger *logging.Logger) *Engine {
	return &Engine{
		capabilities: capabilities,
		keys:         keys,
		logger:       logger,
	}
}

// Run captures every rule of the template. It returns the state document and
// the operation result; the returned error is non-nil only for fatal
// conditions (invalid template, internal failure) under which no document is
// produced.
func (e *Engine) Run(ctx context.Context, tpl *template.Template, opts Options) (*statedoc.StateDocument, *report.Result, error) {
	// Fail fast before any rule handler runs
	if validationErrors := tpl.Validate(); len(validationErrors) > 0 {
		return nil, nil, template.TemplateValidationError{
			Template: tpl.Name,
			Errors:   validationErrors,
		}
	}

	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.RuleTimeout <= 0 {
		opts.RuleTimeout = DefaultRuleTimeout
	}
	if opts.KeyID == "" {
		opts.KeyID = DefaultKeyID
	}

	result := report.NewResult(report.OperationCapture, tpl.Name)
	result.Total = len(tpl.Rules)

	doc := &statedoc.StateDocument{
		TemplateName:    tpl.Name,
		TemplateVersion: tpl.Version,
		MachineID:       opts.MachineID,
		CapturedAt:      time.Now().UTC(),
		Values:          make(map[string]statedoc.RuleValue, len(tpl.Rules)),
	}

	e.logger.Info("capture.run.started", "Capture run started", map[string]interface{}{
		"run_id":   result.RunID,
		"template": tpl.Name,
		"version":  tpl.Version,
		"machine":  opts.MachineID,
		"rules":    len(tpl.Rules),
		"workers":  opts.Workers,
	})

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Workers)

	for _, rule := range tpl.Rules {
		// Cancellation stops scheduling new rules; rules already in
		// flight run to completion.
		if err := ctx.Err(); err != nil {
			mu.Lock()
			doc.Values[rule.ID] = statedoc.MissingValue()
			result.AddFailure(rule.ID, fmt.Errorf("run canceled before rule was scheduled: %w", err))
			mu.Unlock()
			continue
		}

		rule := rule
		group.Go(func() error {
			value, err := e.captureRule(groupCtx, rule, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				doc.Values[rule.ID] = statedoc.MissingValue()
				result.AddFailure(rule.ID, err)
				e.logger.Warn("capture.rule.failed", "Rule capture failed", map[string]interface{}{
					"run_id":  result.RunID,
					"rule_id": rule.ID,
					"error":   err.Error(),
				})
				return nil
			}

			doc.Values[rule.ID] = value
			result.Succeeded++
			e.logger.Debug("capture.rule.done", "Rule captured", map[string]interface{}{
				"run_id":  result.RunID,
				"rule_id": rule.ID,
			})
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		// Workers report failures as data, so a group error is internal
		return nil, nil, fmt.Errorf("capture engine failure: %w", err)
	}

	result.Missing = len(doc.MissingRuleIDs())
	result.Duration = time.Since(result.StartedAt)

	e.logger.Info("capture.run.finished", "Capture run finished", map[string]interface{}{
		"run_id":    result.RunID,
		"template":  tpl.Name,
		"succeeded": result.Succeeded,
		"missing":   result.Missing,
		"failed":    len(result.Failures),
	})

	return doc, result, nil
}

// captureRule reads, transforms and (for sensitive rules) protects a single
// rule's value.
func (e *Engine) captureRule(ctx context.Context, rule template.CaptureRule, opts Options) (statedoc.RuleValue, error) {
	handler, err := e.capabilities.ForType(rule.Type)
	if err != nil {
		return statedoc.RuleValue{}, CaptureError{RuleID: rule.ID, Cause: err}
	}

	ruleCtx, cancel := context.WithTimeout(ctx, opts.RuleTimeout)
	defer cancel()

	raw, err := readWithDeadline(ruleCtx, handler, rule.Source)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return statedoc.RuleValue{}, TimeoutError{RuleID: rule.ID, Timeout: opts.RuleTimeout}
		}
		return statedoc.RuleValue{}, CaptureError{RuleID: rule.ID, Cause: err}
	}

	transformed, err := applyTransform(rule.Transform, raw)
	if err != nil {
		return statedoc.RuleValue{}, CaptureError{RuleID: rule.ID, Cause: err}
	}

	if !rule.Sensitive {
		return statedoc.PlainValue(transformed), nil
	}

	plaintext, err := json.Marshal(transformed)
	if err != nil {
		return statedoc.RuleValue{}, CaptureError{RuleID: rule.ID, Cause: fmt.Errorf("failed to encode value: %w", err)}
	}

	field, err := e.keys.Protect(plaintext, opts.KeyID)
	if err != nil {
		return statedoc.RuleValue{}, CaptureError{RuleID: rule.ID, Cause: err}
	}

	return statedoc.EncryptedValue(field), nil
}

// readWithDeadline invokes the handler in its own goroutine and waits on the
// context, so a capability that never observes ctx cannot block the worker
// past the rule deadline. A result arriving after expiry is discarded; the
// buffered channel lets the late goroutine finish.
func readWithDeadline(ctx context.Context, handler capability.ReadWriter, locator string) (capability.Value, error) {
	type outcome struct {
		value capability.Value
		err   error
	}

	results := make(chan outcome, 1)
	go func() {
		value, err := handler.Read(ctx, locator)
		results <- outcome{value: value, err: err}
	}()

	select {
	case res := <-results:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
