package tools

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// SystemTool answers disk, memory, and CPU questions by shelling out to
// the platform's reporting commands and returning their output verbatim.
type SystemTool struct {
	goos string
}

func NewSystemTool() *SystemTool {
	return &SystemTool{goos: runtime.GOOS}
}

func (s *SystemTool) Name() string { return "system" }

func (s *SystemTool) Description() string {
	return "Report system status: disk space, memory, and CPU load."
}

func (s *SystemTool) Actions() []ActionSpec {
	return []ActionSpec{
		{
			Action:      command.IntentGetSystemInfo,
			Optional:    []string{"kind"},
			Description: "kind is disk, memory, cpu, or all (default all)",
		},
	}
}

func (s *SystemTool) Invoke(ctx context.Context, action command.Intent, args map[string]string) command.ExecutionResult {
	if action != command.IntentGetSystemInfo {
		return failure(action, fmt.Sprintf("system tool does not serve %q", action), nil)
	}

	kind := strings.ToLower(args["kind"])
	if kind == "" || kind == "ram" {
		if kind == "ram" {
			kind = "memory"
		} else {
			kind = "all"
		}
	}

	kinds := []string{kind}
	if kind == "all" {
		kinds = []string{"disk", "memory", "cpu"}
	}

	var sections []string
	for _, k := range kinds {
		out, err := s.report(ctx, k)
		if err != nil {
			out = fmt.Sprintf("%s: unavailable (%v)", k, err)
		}
		sections = append(sections, out)
	}

	return success(command.IntentGetSystemInfo,
		strings.Join(sections, "\n"),
		map[string]string{"kind": kind})
}

func (s *SystemTool) report(ctx context.Context, kind string) (string, error) {
	var cmd *exec.Cmd
	switch kind {
	case "disk":
		cmd = exec.CommandContext(ctx, "df", "-h", "/")
	case "memory":
		if s.goos == "darwin" {
			cmd = exec.CommandContext(ctx, "vm_stat")
		} else {
			cmd = exec.CommandContext(ctx, "free", "-h")
		}
	case "cpu":
		cmd = exec.CommandContext(ctx, "uptime")
	default:
		return "", fmt.Errorf("unknown kind %q", kind)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
