package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/mxsafiri/ubongo.os/internal/command"
	"github.com/mxsafiri/ubongo.os/internal/intent"
	"github.com/mxsafiri/ubongo.os/internal/observability"
	"github.com/mxsafiri/ubongo.os/internal/session"
	"github.com/mxsafiri/ubongo.os/internal/template"
)

// DefaultConfidenceThreshold is the minimum pattern-match confidence that
// short-circuits the template and LLM tiers.
const DefaultConfidenceThreshold = 0.7

// Resolver turns one utterance into exactly one plan, trying the cheapest
// tier first: pattern match, then templates, then the language model.
// Pattern always wins over templates when its confidence clears the
// threshold; deterministic resolution is preferred whenever available.
// It has no side effects beyond reads on the session store.
type Resolver struct {
	Matcher   *intent.Matcher
	Templates *template.Library
	Sessions  *session.Store
	Planner   Planner
	Logger    *observability.Logger
	Threshold float64
}

func NewResolver(matcher *intent.Matcher, templates *template.Library, sessions *session.Store, planner Planner, logger *observability.Logger) *Resolver {
	return &Resolver{
		Matcher:   matcher,
		Templates: templates,
		Sessions:  sessions,
		Planner:   planner,
		Logger:    logger,
		Threshold: DefaultConfidenceThreshold,
	}
}

// Resolve maps the utterance to a plan or fails with one of the
// resolution errors: ErrAmbiguousReference, ErrResolutionUnavailable,
// ErrNoActionResolved.
func (r *Resolver) Resolve(ctx context.Context, sessionID, utterance string) (*command.Plan, error) {
	// 1. Anaphora: "move it" needs an antecedent before any tier runs.
	var ref *session.EntityRef
	if token := session.AnaphoricToken(utterance); token != "" {
		ref = r.Sessions.ResolveReference(sessionID, token)
		if ref == nil {
			return nil, fmt.Errorf("%w: %q", command.ErrAmbiguousReference, token)
		}
	}

	// 2. Pattern tier.
	if cmd := r.Matcher.Match(utterance); cmd != nil && cmd.Confidence >= r.threshold() {
		r.attachReference(cmd, ref)
		if r.Logger != nil {
			r.Logger.LogResolution(sessionID, string(command.TierPattern), cmd.Intent)
		}
		return r.singleStepPlan(cmd), nil
	}

	// 3. Template tier.
	if plan := r.Templates.Lookup(utterance); plan != nil {
		if r.Logger != nil {
			r.Logger.LogResolution(sessionID, string(command.TierTemplate), plan.Template)
		}
		return plan, nil
	}

	// 4. LLM tier, bounded by the planner's timeout.
	if r.Planner != nil {
		plan, err := r.Planner.PlanTask(ctx, utterance, r.history(sessionID))
		if err != nil {
			return nil, err
		}
		if plan != nil && len(plan.Steps) > 0 {
			if r.Logger != nil {
				r.Logger.LogResolution(sessionID, string(command.TierLLM), len(plan.Steps))
			}
			return plan, nil
		}
	}

	// 5. No tier produced a plan.
	return nil, fmt.Errorf("%w: %q", command.ErrNoActionResolved, utterance)
}

func (r *Resolver) threshold() float64 {
	if r.Threshold <= 0 {
		return DefaultConfidenceThreshold
	}
	return r.Threshold
}

// attachReference injects the resolved antecedent into the parameter the
// intent expects it under.
func (r *Resolver) attachReference(cmd *command.ParsedCommand, ref *session.EntityRef) {
	if ref == nil {
		return
	}
	if cmd.Params == nil {
		cmd.Params = map[string]string{}
	}
	switch cmd.Intent {
	case command.IntentMoveItem:
		cmd.Params["source"] = ref.Value
	case command.IntentDeleteItem:
		cmd.Params["path"] = ref.Value
	default:
		cmd.Params["reference"] = ref.Value
	}
}

func (r *Resolver) singleStepPlan(cmd *command.ParsedCommand) *command.Plan {
	return &command.Plan{
		ID:   uuid.NewString(),
		Goal: cmd.RawInput,
		Tier: command.TierPattern,
		Steps: []command.Step{
			{
				Action:               cmd.Intent,
				Args:                 cmd.Params,
				RequiresConfirmation: cmd.RequiresConfirmation,
			},
		},
	}
}

// history converts the session's recent turns into model messages, oldest
// first, for the LLM tier.
func (r *Resolver) history(sessionID string) []llms.MessageContent {
	var out []llms.MessageContent
	for _, turn := range r.Sessions.History(sessionID) {
		role := llms.ChatMessageTypeHuman
		if turn.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(turn.Content)},
		})
	}
	return out
}
