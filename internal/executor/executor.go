// Package executor runs resolved plans step by step against the tool
// collaborators, threading result data between steps and applying the
// confirmation and governance gates.
package executor

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mxsafiri/ubongo.os/internal/command"
	"github.com/mxsafiri/ubongo.os/internal/governance"
	"github.com/mxsafiri/ubongo.os/internal/observability"
	"github.com/mxsafiri/ubongo.os/internal/tools"
)

// Decision is the outcome of a confirmation request.
type Decision string

const (
	Confirmed Decision = "confirmed"
	Declined  Decision = "declined"
	TimedOut  Decision = "timed_out"
)

// Confirmer is the external collaborator consulted before a
// confirmation-gated step runs.
type Confirmer interface {
	RequestConfirmation(ctx context.Context, prompt string) (Decision, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, prompt string) (Decision, error)

func (f ConfirmerFunc) RequestConfirmation(ctx context.Context, prompt string) (Decision, error) {
	return f(ctx, prompt)
}

// DeclineAll is the Confirmer for surfaces that cannot prompt: every
// gated step halts the plan as partially completed.
var DeclineAll = ConfirmerFunc(func(context.Context, string) (Decision, error) {
	return Declined, nil
})

const DefaultConfirmTimeout = 60 * time.Second

// Executor is the plan state machine. It never retries a failed step:
// retry is a plan-level concern the resolver encodes explicitly.
type Executor struct {
	Registry       *tools.Registry
	Policy         governance.PolicyEngine
	Confirm        Confirmer
	Logger         *observability.Logger
	ConfirmTimeout time.Duration
	SessionID      string
}

func New(registry *tools.Registry, policy governance.PolicyEngine, confirm Confirmer, logger *observability.Logger) *Executor {
	return &Executor{
		Registry:       registry,
		Policy:         policy,
		Confirm:        confirm,
		Logger:         logger,
		ConfirmTimeout: DefaultConfirmTimeout,
	}
}

// Execute runs the plan's steps in order. The returned report always
// carries the results accumulated so far; the error is non-nil only for a
// coherence failure, which is a resolver or template bug rather than a
// tool outcome.
//
// Terminal states:
//   - completed: every step ran and every step succeeded
//   - partially_completed: halted by policy (confirmation declined or
//     timed out, caller cancelled while suspended, or only
//     continue-on-failure steps failed)
//   - failed: a required step failed, or the plan was incoherent
func (e *Executor) Execute(ctx context.Context, plan *command.Plan) (*command.Report, error) {
	report := &command.Report{
		PlanID: plan.ID,
		Goal:   plan.Goal,
		State:  command.StateRunning,
	}

	for i, step := range plan.Steps {
		args, err := substitute(step.Args, i, report.Results)
		if err != nil {
			report.State = command.StateFailed
			return report, fmt.Errorf("%w: step %d (%s): %v", command.ErrPlanCoherence, i+1, step.Action, err)
		}

		if step.RequiresConfirmation {
			decision := e.requestConfirmation(ctx, plan, step, args)
			if decision != Confirmed {
				report.State = command.StatePartiallyCompleted
				return report, nil
			}
		}

		result := e.invoke(ctx, plan, step, args)
		report.Results = append(report.Results, result)

		if e.Logger != nil {
			e.Logger.LogStep(e.SessionID, plan.ID, i+1, string(step.Action), result.Success)
		}

		if !result.Success && !step.ContinueOnFailure {
			report.State = command.StateFailed
			return report, nil
		}
	}

	report.State = command.StateCompleted
	for _, res := range report.Results {
		if !res.Success {
			// Only continue-on-failure steps can have failed here.
			report.State = command.StatePartiallyCompleted
			break
		}
	}
	return report, nil
}

func (e *Executor) requestConfirmation(ctx context.Context, plan *command.Plan, step command.Step, args map[string]string) Decision {
	confirm := e.Confirm
	if confirm == nil {
		confirm = DeclineAll
	}

	timeout := e.ConfirmTimeout
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := step.Description
	if prompt == "" {
		prompt = fmt.Sprintf("Run %s with %s?", step.Action, formatArgs(args))
	}

	decision, err := confirm.RequestConfirmation(waitCtx, prompt)
	if err != nil || waitCtx.Err() != nil {
		decision = TimedOut
	}

	if e.Logger != nil {
		e.Logger.LogConfirmation(e.SessionID, plan.ID, string(decision))
	}
	return decision
}

func (e *Executor) invoke(ctx context.Context, plan *command.Plan, step command.Step, args map[string]string) command.ExecutionResult {
	if e.Policy != nil {
		verdict, err := e.Policy.Evaluate(ctx, governance.Request{
			Action:    step.Action,
			Arguments: formatArgs(args),
			SessionID: e.SessionID,
		})
		if err == nil && e.Logger != nil {
			e.Logger.LogPolicyCheck(e.SessionID, plan.ID, string(step.Action), string(verdict.Effect), verdict.Reason)
		}
		if err == nil && verdict.Effect == governance.EffectDeny {
			return command.ExecutionResult{
				Action:  step.Action,
				Success: false,
				Message: verdict.Reason,
				Err:     "denied by policy",
			}
		}
	}

	if e.Logger != nil {
		e.Logger.LogToolCall(e.SessionID, plan.ID, string(step.Action), args)
	}
	return e.Registry.Invoke(ctx, step.Action, args)
}

// placeholderRe matches {{stepN.key}} references to earlier results.
var placeholderRe = regexp.MustCompile(`\{\{step(\d+)\.([A-Za-z0-9_]+)\}\}`)

// substitute resolves placeholders in the step's arguments against the
// data payloads of earlier results. Steps are numbered from 1; a reference
// to the current or a later step, or to a key the earlier step did not
// produce, is a coherence failure.
func substitute(args map[string]string, stepIndex int, results []command.ExecutionResult) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for name, value := range args {
		resolved, err := resolveValue(value, stepIndex, results)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		out[name] = resolved
	}
	return out, nil
}

func resolveValue(value string, stepIndex int, results []command.ExecutionResult) (string, error) {
	var resolveErr error
	resolved := placeholderRe.ReplaceAllStringFunc(value, func(match string) string {
		if resolveErr != nil {
			return match
		}
		sub := placeholderRe.FindStringSubmatch(match)
		ref, _ := strconv.Atoi(sub[1])
		key := sub[2]

		if ref < 1 || ref > stepIndex {
			resolveErr = fmt.Errorf("placeholder %s references step %d from step %d", match, ref, stepIndex+1)
			return match
		}
		if ref > len(results) {
			resolveErr = fmt.Errorf("placeholder %s references a step that did not run", match)
			return match
		}
		v, ok := results[ref-1].Data[key]
		if !ok {
			resolveErr = fmt.Errorf("placeholder %s references key %q absent from step %d's result", match, key, ref)
			return match
		}
		return v
	})
	return resolved, resolveErr
}

func formatArgs(args map[string]string) string {
	if len(args) == 0 {
		return "(no arguments)"
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, args[k]))
	}
	return strings.Join(parts, " ")
}
