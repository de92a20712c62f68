package governance

import (
	"context"
	"fmt"
	"regexp"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a step about to be executed.
type Request struct {
	Action    command.Intent
	Arguments string
	SessionID string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates step invocations against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	DeniedActions map[command.Intent]bool
	DeniedRegex   []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedActions: make(map[command.Intent]bool),
		DeniedRegex:   make([]*regexp.Regexp, 0),
	}
}

// NewSafetyPolicy returns the engine preloaded with rules against
// destructive shell usage.
func NewSafetyPolicy() *DefaultPolicyEngine {
	e := NewDefaultPolicyEngine()
	_ = e.DenyArguments(`rm\s+-rf\s+/`)
	_ = e.DenyArguments(`\bmkfs\b`)
	_ = e.DenyArguments(`\bshutdown\b`)
	_ = e.DenyArguments(`\breboot\b`)
	return e
}

func (e *DefaultPolicyEngine) DenyAction(action command.Intent) {
	e.DeniedActions[action] = true
}

func (e *DefaultPolicyEngine) DenyArguments(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedActions[req.Action] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Action '%s' is restricted by system policy", req.Action),
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(req.Arguments) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Arguments match restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
