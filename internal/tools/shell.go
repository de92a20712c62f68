package tools

import (
	"context"
	"os/exec"
	"strings"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// ShellTool runs an arbitrary shell command. The governance policy engine
// screens its arguments before the executor ever reaches Invoke.
type ShellTool struct{}

func NewShellTool() *ShellTool {
	return &ShellTool{}
}

func (s *ShellTool) Name() string { return "shell" }

func (s *ShellTool) Description() string {
	return "Execute system shell commands. Use with caution."
}

func (s *ShellTool) Actions() []ActionSpec {
	return []ActionSpec{
		{Action: command.IntentRunCommand, Required: []string{"command"}, Description: "Run a shell command and return its output"},
	}
}

func (s *ShellTool) Invoke(ctx context.Context, action command.Intent, args map[string]string) command.ExecutionResult {
	cmd := exec.CommandContext(ctx, "bash", "-c", args["command"])
	output, err := cmd.CombinedOutput()

	result := strings.TrimSpace(string(output))
	if result == "" {
		result = "(no output)"
	}

	if err != nil {
		return failure(command.IntentRunCommand, result, err)
	}
	return success(command.IntentRunCommand, result, map[string]string{"command": args["command"]})
}
