package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

func TestCapabilityToolListsActionsAndTemplates(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{})
	r.Register(NewCapabilityTool(r, []string{"organize_downloads: tidy the downloads folder"}))

	res := r.Invoke(context.Background(), command.IntentCapabilityQuery, nil)
	if !res.Success {
		t.Fatalf("invoke failed: %s", res.Err)
	}
	if !strings.Contains(res.Message, "open_app") {
		t.Errorf("listing missing registered action: %q", res.Message)
	}
	if !strings.Contains(res.Message, "organize_downloads") {
		t.Errorf("listing missing template: %q", res.Message)
	}
}
