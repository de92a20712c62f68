// Package gateway exposes the assistant over remote messaging surfaces.
// Remote surfaces cannot prompt synchronously, so confirmation-gated
// steps are declined there and reported back to the user.
package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// Messenger defines the contract a communication gateway satisfies.
type Messenger interface {
	// Start begins the message listening loop and blocks until Stop.
	Start() error
	// Send delivers a message to a specific chat.
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway.
	Stop() error
}

// FormatReply renders an execution outcome as a chat message.
func FormatReply(report *command.Report, err error) string {
	if err != nil {
		switch {
		case errors.Is(err, command.ErrAmbiguousReference):
			return "I'm not sure what \"it\" refers to. Could you name the file or folder?"
		case errors.Is(err, command.ErrResolutionUnavailable):
			return "I couldn't reach my planner just now. Please try again in a moment."
		case errors.Is(err, command.ErrNoActionResolved):
			return "I don't know how to do that yet. Try /help for what I can do."
		default:
			return "Something went wrong: " + err.Error()
		}
	}
	if report == nil {
		return "Nothing to do."
	}

	var b strings.Builder
	for _, res := range report.Results {
		mark := "✓"
		if !res.Success {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, res.Message)
		if !res.Success && res.Err != "" {
			fmt.Fprintf(&b, "   %s\n", res.Err)
		}
	}
	switch report.State {
	case command.StateCompleted:
		b.WriteString("Done.")
	case command.StatePartiallyCompleted:
		b.WriteString("Stopped partway; some steps need confirmation I can't ask for here.")
	case command.StateFailed:
		b.WriteString("That didn't finish.")
	}
	return b.String()
}
