package gateway

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

func TestFormatReplyResolutionErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: %q", command.ErrAmbiguousReference, "it"), "refers to"},
		{fmt.Errorf("%w: timeout", command.ErrResolutionUnavailable), "try again"},
		{fmt.Errorf("%w: %q", command.ErrNoActionResolved, "sing"), "don't know how"},
	}
	for _, tc := range cases {
		got := FormatReply(nil, tc.err)
		if !strings.Contains(got, tc.want) {
			t.Errorf("FormatReply(%v) = %q, want it to mention %q", tc.err, got, tc.want)
		}
	}
}

func TestFormatReplyPartial(t *testing.T) {
	report := &command.Report{
		State: command.StatePartiallyCompleted,
		Results: []command.ExecutionResult{
			{Success: true, Message: "Created folder 'Archive'"},
		},
	}
	got := FormatReply(report, nil)
	if !strings.Contains(got, "✓ Created folder 'Archive'") {
		t.Errorf("reply missing step line: %q", got)
	}
	if !strings.Contains(got, "Stopped partway") {
		t.Errorf("reply missing partial notice: %q", got)
	}
}

func TestFormatReplyFailedStep(t *testing.T) {
	report := &command.Report{
		State: command.StateFailed,
		Results: []command.ExecutionResult{
			{Success: false, Message: "Could not move file", Err: "no such file"},
		},
	}
	got := FormatReply(report, nil)
	if !strings.Contains(got, "✗ Could not move file") || !strings.Contains(got, "no such file") {
		t.Errorf("reply = %q", got)
	}
}
