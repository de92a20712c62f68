package governance

import (
	"context"
	"testing"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	req1 := Request{Action: command.IntentSearchFiles}
	res1, err := engine.Evaluate(ctx, req1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny
	engine.DenyAction(command.IntentRunCommand)
	req2 := Request{Action: command.IntentRunCommand}
	res2, err := engine.Evaluate(ctx, req2)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}
}

func TestSafetyPolicy_DeniesDestructiveArguments(t *testing.T) {
	engine := NewSafetyPolicy()
	ctx := context.Background()

	res, err := engine.Evaluate(ctx, Request{
		Action:    command.IntentRunCommand,
		Arguments: `command=rm -rf / --no-preserve-root`,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny for rm -rf, got %s", res.Effect)
	}

	res, err = engine.Evaluate(ctx, Request{
		Action:    command.IntentRunCommand,
		Arguments: `command=ls -la`,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow for ls, got %s", res.Effect)
	}
}
