package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// ScreenTool types text into the focused window and captures screenshots
// through the platform's automation commands. Screenshots land in a
// Screenshots folder on the desktop, and the saved path is the result's
// primary subject so "delete it" afterwards works.
type ScreenTool struct {
	goos string
	home string
	now  func() time.Time
}

func NewScreenTool(home string) *ScreenTool {
	abs, _ := filepath.Abs(home)
	return &ScreenTool{goos: runtime.GOOS, home: abs, now: time.Now}
}

func (s *ScreenTool) Name() string { return "screen" }

func (s *ScreenTool) Description() string {
	return "Type text into the focused window and take screenshots."
}

func (s *ScreenTool) Actions() []ActionSpec {
	return []ActionSpec{
		{Action: command.IntentTypeText, Required: []string{"text"}, Description: "Type text as keyboard input into the focused window"},
		{Action: command.IntentScreenCapture, Optional: []string{"filename"}, Description: "Take a screenshot and save it to the desktop Screenshots folder"},
	}
}

func (s *ScreenTool) Invoke(ctx context.Context, action command.Intent, args map[string]string) command.ExecutionResult {
	switch action {
	case command.IntentTypeText:
		return s.typeText(ctx, args["text"])
	case command.IntentScreenCapture:
		return s.capture(ctx, args["filename"])
	default:
		return failure(action, fmt.Sprintf("screen tool does not serve %q", action), nil)
	}
}

func (s *ScreenTool) typeText(ctx context.Context, text string) command.ExecutionResult {
	name, cmdArgs, err := typeTextCommand(s.goos, text)
	if err != nil {
		return failure(command.IntentTypeText, "Typing is not supported on this system", err)
	}

	output, err := exec.CommandContext(ctx, name, cmdArgs...).CombinedOutput()
	if err != nil {
		msg := "Could not type the text"
		if out := strings.TrimSpace(string(output)); out != "" {
			msg += ": " + out
		}
		return failure(command.IntentTypeText, msg, err)
	}

	return success(command.IntentTypeText,
		fmt.Sprintf("Typed %d characters", len(text)),
		map[string]string{"length": fmt.Sprintf("%d", len(text))})
}

func (s *ScreenTool) capture(ctx context.Context, filename string) command.ExecutionResult {
	dir := filepath.Join(s.home, "Desktop", "Screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failure(command.IntentScreenCapture, "Could not create the Screenshots folder", err)
	}
	if filename == "" {
		filename = screenshotFilename(s.now())
	}
	path := filepath.Join(dir, filename)

	name, cmdArgs, err := captureCommand(s.goos, path)
	if err != nil {
		return failure(command.IntentScreenCapture, "Screenshots are not supported on this system", err)
	}

	output, err := exec.CommandContext(ctx, name, cmdArgs...).CombinedOutput()
	if err != nil {
		msg := "Could not take a screenshot"
		if out := strings.TrimSpace(string(output)); out != "" {
			msg += ": " + out
		}
		return failure(command.IntentScreenCapture, msg, err)
	}

	return success(command.IntentScreenCapture,
		fmt.Sprintf("Screenshot saved to %s", filename),
		map[string]string{"path": path, "filename": filename})
}

func screenshotFilename(t time.Time) string {
	return "screenshot_" + t.Format("20060102_150405") + ".png"
}

// typeTextCommand picks the platform keystroke injector. The text is
// passed as a single argument, never through a shell.
func typeTextCommand(goos, text string) (string, []string, error) {
	switch goos {
	case "darwin":
		escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(text)
		script := fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escaped)
		return "osascript", []string{"-e", script}, nil
	case "linux":
		return "xdotool", []string{"type", "--delay", "30", "--", text}, nil
	case "windows":
		escaped := strings.ReplaceAll(text, "'", "''")
		script := fmt.Sprintf("Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait('%s')", escaped)
		return "powershell", []string{"-NoProfile", "-Command", script}, nil
	default:
		return "", nil, fmt.Errorf("no keystroke injector for %s", goos)
	}
}

func captureCommand(goos, path string) (string, []string, error) {
	switch goos {
	case "darwin":
		// -x: no shutter sound.
		return "screencapture", []string{"-x", path}, nil
	case "linux":
		return "scrot", []string{path}, nil
	case "windows":
		script := fmt.Sprintf("Add-Type -AssemblyName System.Windows.Forms,System.Drawing; $b = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds; $bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height; $g = [System.Drawing.Graphics]::FromImage($bmp); $g.CopyFromScreen($b.Location, [System.Drawing.Point]::Empty, $b.Size); $bmp.Save('%s')", strings.ReplaceAll(path, "'", "''"))
		return "powershell", []string{"-NoProfile", "-Command", script}, nil
	default:
		return "", nil, fmt.Errorf("no screenshot command for %s", goos)
	}
}
