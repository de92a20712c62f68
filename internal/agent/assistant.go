package agent

import (
	"context"

	"github.com/mxsafiri/ubongo.os/internal/command"
	"github.com/mxsafiri/ubongo.os/internal/executor"
	"github.com/mxsafiri/ubongo.os/internal/observability"
	"github.com/mxsafiri/ubongo.os/internal/session"
)

// Assistant is the front door: one call per utterance, running the full
// resolve, execute, record cycle under the session lock so concurrent
// utterances in the same session never interleave.
type Assistant struct {
	Resolver *Resolver
	Executor *executor.Executor
	Sessions *session.Store
	Logger   *observability.Logger
}

func NewAssistant(resolver *Resolver, exec *executor.Executor, sessions *session.Store, logger *observability.Logger) *Assistant {
	return &Assistant{
		Resolver: resolver,
		Executor: exec,
		Sessions: sessions,
		Logger:   logger,
	}
}

// Handle processes one utterance end to end and returns the execution
// report. A resolution failure returns a nil report and leaves the
// session untouched; once a plan executes, the session records the
// outcome whatever the terminal state was.
func (a *Assistant) Handle(ctx context.Context, sessionID, utterance string) (*command.Report, error) {
	release := a.Sessions.Lock(sessionID)
	defer release()

	plan, err := a.Resolver.Resolve(ctx, sessionID, utterance)
	if err != nil {
		return nil, err
	}

	if a.Logger != nil {
		a.Logger.LogPlan(sessionID, plan.ID, plan.Goal, len(plan.Steps))
	}

	// Shallow copy so concurrent sessions each stamp their own identifier.
	exec := *a.Executor
	exec.SessionID = sessionID

	report, execErr := exec.Execute(ctx, plan)
	if report != nil {
		a.Sessions.Update(sessionID, a.record(plan, report, utterance), report)
	}
	return report, execErr
}

// record builds the session-facing summary of what just ran.
func (a *Assistant) record(plan *command.Plan, report *command.Report, utterance string) *command.ParsedCommand {
	cmd := &command.ParsedCommand{
		Intent:   command.IntentUnknown,
		Tier:     plan.Tier,
		Template: plan.Template,
		RawInput: utterance,
	}
	if last := report.LastResult(); last != nil {
		cmd.Intent = last.Action
	} else if len(plan.Steps) > 0 {
		cmd.Intent = plan.Steps[0].Action
	}
	if len(plan.Steps) == 1 {
		cmd.Params = plan.Steps[0].Args
	}
	return cmd
}
