package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

func TestTypeTextCommandPerPlatform(t *testing.T) {
	name, args, err := typeTextCommand("darwin", `say "hi"`)
	if err != nil {
		t.Fatalf("darwin: %v", err)
	}
	if name != "osascript" {
		t.Errorf("darwin injector = %q", name)
	}
	// Quotes must be escaped inside the AppleScript string literal.
	if !strings.Contains(args[1], `keystroke "say \"hi\""`) {
		t.Errorf("darwin script = %q", args[1])
	}

	name, args, err = typeTextCommand("linux", "hello")
	if err != nil {
		t.Fatalf("linux: %v", err)
	}
	if name != "xdotool" || args[len(args)-1] != "hello" {
		t.Errorf("linux command = %q %v", name, args)
	}

	if _, _, err := typeTextCommand("plan9", "hello"); err == nil {
		t.Error("expected an error for an unsupported platform")
	}
}

func TestCaptureCommandPerPlatform(t *testing.T) {
	name, args, err := captureCommand("darwin", "/tmp/shot.png")
	if err != nil {
		t.Fatalf("darwin: %v", err)
	}
	if name != "screencapture" || args[len(args)-1] != "/tmp/shot.png" {
		t.Errorf("darwin command = %q %v", name, args)
	}

	name, args, err = captureCommand("linux", "/tmp/shot.png")
	if err != nil {
		t.Fatalf("linux: %v", err)
	}
	if name != "scrot" || args[0] != "/tmp/shot.png" {
		t.Errorf("linux command = %q %v", name, args)
	}

	if _, _, err := captureCommand("plan9", "/tmp/shot.png"); err == nil {
		t.Error("expected an error for an unsupported platform")
	}
}

func TestScreenshotFilename(t *testing.T) {
	ts := time.Date(2026, 8, 29, 14, 5, 9, 0, time.UTC)
	if got := screenshotFilename(ts); got != "screenshot_20260829_140509.png" {
		t.Errorf("filename = %q", got)
	}
}

func TestScreenToolUnsupportedPlatformFails(t *testing.T) {
	tool := &ScreenTool{goos: "plan9", home: t.TempDir(), now: time.Now}

	res := tool.Invoke(context.Background(), command.IntentTypeText, map[string]string{"text": "hi"})
	if res.Success {
		t.Error("type_text should fail on an unsupported platform")
	}

	res = tool.Invoke(context.Background(), command.IntentScreenCapture, nil)
	if res.Success {
		t.Error("screen_capture should fail on an unsupported platform")
	}
}
