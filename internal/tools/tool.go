package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// ActionSpec declares one action a tool serves and the argument shape it
// expects. The registry validates arguments against the spec before the
// tool is ever invoked, so a malformed step surfaces as a step failure
// instead of a runtime type error inside the tool.
type ActionSpec struct {
	Action      command.Intent
	Required    []string
	Optional    []string
	Description string
}

// Tool is the contract every collaborator satisfies. Implementations must
// be safe to report failure without partial unobservable side effects, or
// document which actions are non-idempotent.
type Tool interface {
	Name() string
	Description() string
	Actions() []ActionSpec
	Invoke(ctx context.Context, action command.Intent, args map[string]string) command.ExecutionResult
}

// Registry maps action names to the tools that serve them.
type Registry struct {
	tools   map[string]Tool
	actions map[command.Intent]ActionSpec
	serves  map[command.Intent]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		actions: make(map[command.Intent]ActionSpec),
		serves:  make(map[command.Intent]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
	for _, spec := range t.Actions() {
		r.actions[spec.Action] = spec
		r.serves[spec.Action] = t
	}
}

// Knows reports whether any registered tool serves the action.
func (r *Registry) Knows(action command.Intent) bool {
	_, ok := r.serves[action]
	return ok
}

// Validate checks that the action is registered and that every required
// argument is present and non-empty.
func (r *Registry) Validate(action command.Intent, args map[string]string) error {
	spec, ok := r.actions[action]
	if !ok {
		return fmt.Errorf("no tool registered for action %q", action)
	}
	for _, name := range spec.Required {
		if args[name] == "" {
			return fmt.Errorf("action %q requires argument %q", action, name)
		}
	}
	return nil
}

// Invoke routes the action to its tool. Validation failures come back as
// failed results, never panics.
func (r *Registry) Invoke(ctx context.Context, action command.Intent, args map[string]string) command.ExecutionResult {
	if err := r.Validate(action, args); err != nil {
		return command.ExecutionResult{
			Action:  action,
			Success: false,
			Message: err.Error(),
			Err:     err.Error(),
		}
	}
	return r.serves[action].Invoke(ctx, action, args)
}

// Describe renders the registered actions as one block of text, one line
// per action, for capability listings and the planner prompt.
func (r *Registry) Describe() string {
	specs := make([]ActionSpec, 0, len(r.actions))
	for _, spec := range r.actions {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Action < specs[j].Action })

	var b strings.Builder
	for _, spec := range specs {
		fmt.Fprintf(&b, "- %s", spec.Action)
		if len(spec.Required) > 0 {
			fmt.Fprintf(&b, " (requires: %s)", strings.Join(spec.Required, ", "))
		}
		if spec.Description != "" {
			fmt.Fprintf(&b, ": %s", spec.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func success(action command.Intent, msg string, data map[string]string) command.ExecutionResult {
	return command.ExecutionResult{Action: action, Success: true, Message: msg, Data: data}
}

func failure(action command.Intent, msg string, err error) command.ExecutionResult {
	res := command.ExecutionResult{Action: action, Success: false, Message: msg}
	if err != nil {
		res.Err = err.Error()
	}
	return res
}
