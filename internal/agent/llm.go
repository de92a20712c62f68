package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/mxsafiri/ubongo.os/internal/command"
	"github.com/mxsafiri/ubongo.os/internal/observability"
	"github.com/mxsafiri/ubongo.os/internal/tools"
)

// Planner is the language-model collaborator: given a goal it proposes an
// ordered step plan, or nothing when it cannot help. Implementations must
// respect the context deadline.
type Planner interface {
	PlanTask(ctx context.Context, goal string, history []llms.MessageContent) (*command.Plan, error)
}

// DefaultLLMTimeout bounds how long the resolver waits on the model.
const DefaultLLMTimeout = 20 * time.Second

const plannerPrompt = `You are a task planner for a local computer assistant.
Break the user's request into concrete steps and submit them with the
propose_plan tool. Use ONLY the actions listed below. Argument values may
reference an earlier step's output with {{stepN.key}} (steps are numbered
from 1; create_folder and move_item produce a "path" key).
Mark destructive steps with requires_confirmation. If the request is not
something these actions can do, reply with a short text explanation
instead of calling the tool.

## Available actions:
%s`

// LLMPlanner turns free-text goals into plans via a langchaingo model,
// using a single propose_plan function call so the response is structured
// rather than free text.
type LLMPlanner struct {
	Model    llms.Model
	Registry *tools.Registry
	Logger   *observability.Logger
	Timeout  time.Duration
}

func NewLLMPlanner(model llms.Model, registry *tools.Registry, logger *observability.Logger) *LLMPlanner {
	return &LLMPlanner{
		Model:    model,
		Registry: registry,
		Logger:   logger,
		Timeout:  DefaultLLMTimeout,
	}
}

type proposedStep struct {
	Action               string         `json:"action"`
	Args                 map[string]any `json:"args"`
	Description          string         `json:"description"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
	ContinueOnFailure    bool           `json:"continue_on_failure"`
}

type proposedPlan struct {
	Steps []proposedStep `json:"steps"`
}

func (p *LLMPlanner) PlanTask(ctx context.Context, goal string, history []llms.MessageContent) (*command.Plan, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	system := fmt.Sprintf(plannerPrompt, p.Registry.Describe())

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
	}
	messages = append(messages, history...)
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(goal)},
	})

	resp, err := p.Model.GenerateContent(callCtx, messages, llms.WithTools(plannerTools()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", command.ErrResolutionUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", command.ErrResolutionUnavailable)
	}

	choice := resp.Choices[0]
	if p.Logger != nil {
		p.Logger.LogLLM("", goal, choice.Content)
	}

	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil || tc.FunctionCall.Name != "propose_plan" {
			continue
		}
		var proposed proposedPlan
		if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &proposed); err != nil {
			return nil, fmt.Errorf("%w: malformed propose_plan arguments: %v", command.ErrResolutionUnavailable, err)
		}
		return p.buildPlan(goal, proposed)
	}

	// A plain-text answer means the model had no actionable plan.
	return nil, nil
}

func (p *LLMPlanner) buildPlan(goal string, proposed proposedPlan) (*command.Plan, error) {
	if len(proposed.Steps) == 0 {
		return nil, nil
	}

	steps := make([]command.Step, 0, len(proposed.Steps))
	for _, ps := range proposed.Steps {
		action := command.Intent(ps.Action)
		if !p.Registry.Knows(action) {
			// The model invented an action: reject the whole plan rather
			// than let it fail halfway through execution.
			return nil, nil
		}
		args := make(map[string]string, len(ps.Args))
		for k, v := range ps.Args {
			if s, ok := v.(string); ok {
				args[k] = s
			} else {
				args[k] = fmt.Sprint(v)
			}
		}
		steps = append(steps, command.Step{
			Action:               action,
			Args:                 args,
			Description:          ps.Description,
			RequiresConfirmation: ps.RequiresConfirmation,
			ContinueOnFailure:    ps.ContinueOnFailure,
		})
	}

	return &command.Plan{
		ID:    uuid.NewString(),
		Goal:  goal,
		Tier:  command.TierLLM,
		Steps: steps,
	}, nil
}

func plannerTools() []llms.Tool {
	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "propose_plan",
				Description: "Submit an ordered plan of steps to fulfill the user's request.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"steps": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"action": map[string]any{
										"type": "string",
									},
									"args": map[string]any{
										"type":        "object",
										"description": "Arguments for the action, keyed by name",
									},
									"description": map[string]any{
										"type": "string",
									},
									"requires_confirmation": map[string]any{
										"type": "boolean",
									},
									"continue_on_failure": map[string]any{
										"type": "boolean",
									},
								},
								"required": []string{"action"},
							},
						},
					},
					"required": []string{"steps"},
				},
			},
		},
	}
}
