package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mxsafiri/ubongo.os/internal/command"
	"github.com/mxsafiri/ubongo.os/internal/executor"
	"github.com/mxsafiri/ubongo.os/internal/intent"
	"github.com/mxsafiri/ubongo.os/internal/session"
	"github.com/mxsafiri/ubongo.os/internal/template"
	"github.com/mxsafiri/ubongo.os/internal/tools"
)

// recordingTool serves the folder and move actions with canned results so
// the full utterance-to-report cycle can run without touching the disk.
type recordingTool struct {
	invocations []map[string]string
}

func (r *recordingTool) Name() string        { return "recorder" }
func (r *recordingTool) Description() string { return "records invocations" }

func (r *recordingTool) Actions() []tools.ActionSpec {
	return []tools.ActionSpec{
		{Action: command.IntentCreateFolder, Required: []string{"name"}, Optional: []string{"location"}},
		{Action: command.IntentMoveItem, Required: []string{"source", "destination"}},
	}
}

func (r *recordingTool) Invoke(_ context.Context, action command.Intent, args map[string]string) command.ExecutionResult {
	r.invocations = append(r.invocations, args)
	switch action {
	case command.IntentCreateFolder:
		return command.ExecutionResult{
			Action:  action,
			Success: true,
			Message: fmt.Sprintf("Created folder '%s'", args["name"]),
			Data:    map[string]string{"path": "/home/u/Desktop/" + args["name"], "name": args["name"]},
		}
	case command.IntentMoveItem:
		return command.ExecutionResult{
			Action:  action,
			Success: true,
			Message: "Moved",
			Data:    map[string]string{"path": "/home/u/Documents/" + args["name"]},
		}
	}
	return command.ExecutionResult{Action: action, Err: "unexpected action"}
}

func confirmAll(context.Context, string) (executor.Decision, error) {
	return executor.Confirmed, nil
}

func newTestAssistant(t *testing.T, planner Planner) (*Assistant, *recordingTool, *session.Store) {
	t.Helper()

	tool := &recordingTool{}
	registry := tools.NewRegistry()
	registry.Register(tool)

	lib, err := template.NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}

	store := session.NewStore(nil, 0)
	resolver := NewResolver(intent.NewMatcher(), lib, store, planner, nil)
	exec := executor.New(registry, nil, executor.ConfirmerFunc(confirmAll), nil)

	return NewAssistant(resolver, exec, store, nil), tool, store
}

func TestAssistantFollowUpCycle(t *testing.T) {
	a, tool, _ := newTestAssistant(t, &fakePlanner{})
	ctx := context.Background()

	report, err := a.Handle(ctx, "s1", "create a folder called Projects on my desktop")
	if err != nil {
		t.Fatalf("first utterance: %v", err)
	}
	if !report.Success() {
		t.Fatalf("state = %q, want completed", report.State)
	}

	// The follow-up resolves "it" to the folder the first turn created.
	report, err = a.Handle(ctx, "s1", "move it to Documents")
	if err != nil {
		t.Fatalf("follow-up: %v", err)
	}
	if !report.Success() {
		t.Fatalf("state = %q, want completed", report.State)
	}
	if len(tool.invocations) != 2 {
		t.Fatalf("got %d tool invocations, want 2", len(tool.invocations))
	}
	moveArgs := tool.invocations[1]
	if moveArgs["source"] != "/home/u/Desktop/Projects" {
		t.Errorf("source = %q, want the created folder", moveArgs["source"])
	}
	if moveArgs["destination"] != "Documents" {
		t.Errorf("destination = %q", moveArgs["destination"])
	}
}

func TestAssistantResolutionFailureLeavesSessionUntouched(t *testing.T) {
	planner := &fakePlanner{err: fmt.Errorf("%w: no response", command.ErrResolutionUnavailable)}
	a, tool, store := newTestAssistant(t, planner)

	report, err := a.Handle(context.Background(), "s1", "something only a model could plan")
	if !errors.Is(err, command.ErrResolutionUnavailable) {
		t.Fatalf("err = %v, want ErrResolutionUnavailable", err)
	}
	if report != nil {
		t.Errorf("got report %+v for a resolution failure", report)
	}
	if len(tool.invocations) != 0 {
		t.Errorf("tools ran despite resolution failing")
	}
	if turns := store.History("s1"); len(turns) != 0 {
		t.Errorf("session recorded %d turns for a failed resolution", len(turns))
	}
}

func TestAssistantRecordsOutcome(t *testing.T) {
	a, _, store := newTestAssistant(t, &fakePlanner{})

	if _, err := a.Handle(context.Background(), "s1", "create a folder called Notes on my desktop"); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	sc := store.Get("s1")
	if sc.LastAction != command.IntentCreateFolder {
		t.Errorf("last action = %q", sc.LastAction)
	}
	if sc.LastReport == nil || sc.LastReport.State != command.StateCompleted {
		t.Errorf("last report not recorded: %+v", sc.LastReport)
	}
	if len(sc.Turns) != 2 {
		t.Errorf("got %d turns, want human+assistant pair", len(sc.Turns))
	}
}

func TestAssistantDeclinedConfirmationIsPartial(t *testing.T) {
	a, tool, _ := newTestAssistant(t, &fakePlanner{})
	a.Executor.Confirm = executor.DeclineAll
	ctx := context.Background()

	if _, err := a.Handle(ctx, "s1", "create a folder called Projects on my desktop"); err != nil {
		t.Fatalf("setup turn: %v", err)
	}

	report, err := a.Handle(ctx, "s1", "move it to Documents")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if report.State != command.StatePartiallyCompleted {
		t.Errorf("state = %q, want partially_completed", report.State)
	}
	if len(tool.invocations) != 1 {
		t.Errorf("move ran despite the declined confirmation")
	}
}
