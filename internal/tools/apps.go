package tools

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// AppTool opens and closes desktop applications through the platform's
// launcher command. It is a thin shim: success means the launcher accepted
// the request, not that the application is actually on screen.
type AppTool struct {
	goos string
}

func NewAppTool() *AppTool {
	return &AppTool{goos: runtime.GOOS}
}

func (a *AppTool) Name() string { return "apps" }

func (a *AppTool) Description() string {
	return "Open and close desktop applications."
}

func (a *AppTool) Actions() []ActionSpec {
	return []ActionSpec{
		{Action: command.IntentOpenApp, Required: []string{"app_name"}, Description: "Launch an application by name"},
		{Action: command.IntentCloseApp, Required: []string{"app_name"}, Description: "Quit an application by name"},
	}
}

func (a *AppTool) Invoke(ctx context.Context, action command.Intent, args map[string]string) command.ExecutionResult {
	app := args["app_name"]

	var cmd *exec.Cmd
	switch action {
	case command.IntentOpenApp:
		switch a.goos {
		case "darwin":
			cmd = exec.CommandContext(ctx, "open", "-a", app)
		case "windows":
			cmd = exec.CommandContext(ctx, "cmd", "/C", "start", "", app)
		default:
			cmd = exec.CommandContext(ctx, "xdg-open", app)
		}
	case command.IntentCloseApp:
		switch a.goos {
		case "darwin":
			cmd = exec.CommandContext(ctx, "osascript", "-e", fmt.Sprintf(`quit app %q`, app))
		case "windows":
			cmd = exec.CommandContext(ctx, "taskkill", "/IM", app+".exe")
		default:
			cmd = exec.CommandContext(ctx, "pkill", "-f", app)
		}
	default:
		return failure(action, fmt.Sprintf("apps tool does not serve %q", action), nil)
	}

	verb, done := "open", "Opened"
	if action == command.IntentCloseApp {
		verb, done = "close", "Closed"
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := fmt.Sprintf("Could not %s %s", verb, app)
		if out := strings.TrimSpace(string(output)); out != "" {
			msg += ": " + out
		}
		return failure(action, msg, err)
	}

	return success(action,
		fmt.Sprintf("%s %s", done, app),
		map[string]string{"app_name": app})
}
