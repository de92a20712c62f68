package session

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

func sampleReport() *command.Report {
	return &command.Report{
		PlanID: "p1",
		Goal:   "create a folder called Projects on my desktop",
		State:  command.StateCompleted,
		Results: []command.ExecutionResult{
			{
				Action:  command.IntentCreateFolder,
				Success: true,
				Message: "Created folder Projects",
				Data:    map[string]string{"path": "/home/u/Desktop/Projects"},
			},
		},
	}
}

func TestStore_ResolveReference(t *testing.T) {
	s := NewStore(nil, 0)

	if ref := s.ResolveReference("s1", "it"); ref != nil {
		t.Errorf("expected nil ref with no history, got %+v", ref)
	}

	cmd := &command.ParsedCommand{
		Intent:   command.IntentCreateFolder,
		RawInput: "create a folder called Projects on my desktop",
		Tier:     command.TierPattern,
	}
	s.Update("s1", cmd, sampleReport())

	ref := s.ResolveReference("s1", "it")
	if ref == nil {
		t.Fatal("expected a resolved reference")
	}
	if ref.Kind != "path" || ref.Value != "/home/u/Desktop/Projects" {
		t.Errorf("ref = %+v, want path /home/u/Desktop/Projects", ref)
	}

	// Other sessions share nothing.
	if ref := s.ResolveReference("s2", "it"); ref != nil {
		t.Errorf("expected nil ref for unrelated session, got %+v", ref)
	}
}

func TestStore_UpdateRecordsLastAction(t *testing.T) {
	s := NewStore(nil, 0)

	cmd := &command.ParsedCommand{Intent: command.IntentCreateFolder, RawInput: "create a folder"}
	s.Update("s1", cmd, sampleReport())

	ctx := s.Get("s1")
	if ctx.LastAction != command.IntentCreateFolder {
		t.Errorf("last action = %s, want create_folder", ctx.LastAction)
	}
	if ctx.AwaitingFollowup {
		t.Error("completed plan should not leave a pending follow-up")
	}
	if len(ctx.Turns) != 2 {
		t.Errorf("turns = %d, want 2", len(ctx.Turns))
	}
}

func TestStore_HistoryBounded(t *testing.T) {
	s := NewStore(nil, 4)

	for i := 0; i < 10; i++ {
		cmd := &command.ParsedCommand{Intent: command.IntentGetSystemInfo, RawInput: "check my disk"}
		s.Update("s1", cmd, sampleReport())
	}

	ctx := s.Get("s1")
	if len(ctx.Turns) > 4 {
		t.Errorf("history grew to %d turns, bound is 4", len(ctx.Turns))
	}
}

func TestStore_EvictIdle(t *testing.T) {
	s := NewStore(nil, 0)
	s.Get("s1")
	s.Get("s2")

	// Both sessions were just touched; nothing to evict.
	if n := s.EvictIdle(time.Hour); n != 0 {
		t.Errorf("evicted %d fresh sessions", n)
	}
	if n := s.EvictIdle(0); n != 2 {
		t.Errorf("evicted %d sessions, want 2", n)
	}
}

type trackingPersistence struct {
	saved   map[string]*Context
	deleted []string
}

func (p *trackingPersistence) Load(sessionID string) (*Context, error) {
	return p.saved[sessionID], nil
}

func (p *trackingPersistence) Save(sessionID string, sc *Context) error {
	if p.saved == nil {
		p.saved = map[string]*Context{}
	}
	p.saved[sessionID] = sc
	return nil
}

func (p *trackingPersistence) Delete(sessionID string) error {
	p.deleted = append(p.deleted, sessionID)
	delete(p.saved, sessionID)
	return nil
}

func TestStore_EndDropsMemoryAndPersistence(t *testing.T) {
	p := &trackingPersistence{}
	s := NewStore(p, 0)

	cmd := &command.ParsedCommand{Intent: command.IntentCreateFolder, RawInput: "create a folder"}
	s.Update("s1", cmd, sampleReport())
	if s.ResolveReference("s1", "it") == nil {
		t.Fatal("setup: reference did not resolve")
	}

	s.End("s1")

	if len(p.deleted) != 1 || p.deleted[0] != "s1" {
		t.Errorf("persisted record not deleted: %v", p.deleted)
	}
	// The session restarts from scratch: no antecedent, no turns.
	if ref := s.ResolveReference("s1", "it"); ref != nil {
		t.Errorf("ended session still resolves references: %+v", ref)
	}
	if turns := s.History("s1"); len(turns) != 0 {
		t.Errorf("ended session kept %d turns", len(turns))
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")

	p, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer p.Close()

	s := NewStore(p, 0)
	cmd := &command.ParsedCommand{
		Intent:   command.IntentCreateFolder,
		RawInput: "create a folder called Projects on my desktop",
	}
	report := sampleReport()
	s.Update("s1", cmd, report)

	// A fresh store over the same database must see the same last result.
	s2 := NewStore(p, 0)
	ctx := s2.Get("s1")
	if ctx.LastReport == nil {
		t.Fatal("reloaded context has no last report")
	}
	if !reflect.DeepEqual(ctx.LastReport.Results, report.Results) {
		t.Errorf("reloaded results = %+v, want %+v", ctx.LastReport.Results, report.Results)
	}

	ref := s2.ResolveReference("s1", "it")
	if ref == nil || ref.Value != "/home/u/Desktop/Projects" {
		t.Errorf("reloaded ref = %+v, want the created path", ref)
	}
}

func TestAnaphoricToken(t *testing.T) {
	cases := map[string]string{
		"move it to Documents":                       "it",
		"delete that":                                "that",
		"create a folder called Projects on desktop": "",
		"sort my downloads":                          "",
	}
	for input, want := range cases {
		if got := AnaphoricToken(input); got != want {
			t.Errorf("AnaphoricToken(%q) = %q, want %q", input, got, want)
		}
	}
}
