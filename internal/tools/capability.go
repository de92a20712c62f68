package tools

import (
	"context"
	"strings"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// CapabilityTool answers "what can you do" from the live registry, so the
// listing never drifts from what is actually registered.
type CapabilityTool struct {
	Registry  *Registry
	Templates []string
}

func NewCapabilityTool(registry *Registry, templates []string) *CapabilityTool {
	return &CapabilityTool{Registry: registry, Templates: templates}
}

func (c *CapabilityTool) Name() string { return "capability" }

func (c *CapabilityTool) Description() string {
	return "Describes the available actions and routines"
}

func (c *CapabilityTool) Actions() []ActionSpec {
	return []ActionSpec{
		{Action: command.IntentCapabilityQuery, Description: "List what the console can do"},
	}
}

func (c *CapabilityTool) Invoke(_ context.Context, action command.Intent, _ map[string]string) command.ExecutionResult {
	if action != command.IntentCapabilityQuery {
		return failure(action, "unsupported action", nil)
	}

	var b strings.Builder
	b.WriteString("I can run these actions:\n")
	b.WriteString(c.Registry.Describe())
	if len(c.Templates) > 0 {
		b.WriteString("\n\nMulti-step routines:\n")
		for _, t := range c.Templates {
			b.WriteString("- " + t + "\n")
		}
	}
	return success(action, strings.TrimRight(b.String(), "\n"), nil)
}
