package template

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

func TestLibrary_OrganizeDownloads(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}

	plan := lib.Lookup("organize my downloads")
	if plan == nil {
		t.Fatal("expected a template match")
	}
	if plan.Template != "organize_downloads" {
		t.Errorf("template = %q, want organize_downloads", plan.Template)
	}
	if plan.Tier != command.TierTemplate {
		t.Errorf("tier = %s, want template", plan.Tier)
	}
	if len(plan.Steps) != 5 {
		t.Fatalf("steps = %d, want 5", len(plan.Steps))
	}

	wantOrder := []command.Intent{
		command.IntentGetSystemInfo,
		command.IntentSearchFiles,
		command.IntentCreateFolder,
		command.IntentSortFiles,
		command.IntentGetSystemInfo,
	}
	for i, want := range wantOrder {
		if plan.Steps[i].Action != want {
			t.Errorf("step %d action = %s, want %s", i, plan.Steps[i].Action, want)
		}
	}
	if !plan.Steps[3].RequiresConfirmation {
		t.Error("sort step should be confirmation-gated")
	}
}

func TestLibrary_NoMatch(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}

	if plan := lib.Lookup("write a poem about the sea"); plan != nil {
		t.Errorf("expected nil plan, got template %q", plan.Template)
	}
}

func TestLibrary_DateSubstitution(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}
	lib.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}

	plan := lib.Lookup("backup my files to the external drive")
	if plan == nil {
		t.Fatal("expected a template match")
	}
	if got := plan.Steps[0].Args["name"]; got != "Backup-2026-08-29" {
		t.Errorf("folder name = %q, want Backup-2026-08-29", got)
	}
}

func TestLibrary_TriggerIsKeywordSetContainment(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}

	// Keywords may appear anywhere, in any order.
	plan := lib.Lookup("my downloads really need a sort")
	if plan == nil {
		t.Fatal("expected organize_downloads to trigger")
	}
	if plan.Template != "organize_downloads" {
		t.Errorf("template = %q, want organize_downloads", plan.Template)
	}
}

func TestNewLibraryFromFile(t *testing.T) {
	body := `templates:
  - name: custom_cleanup
    description: Tidy a scratch folder
    triggers:
      - all: [cleanup, scratch]
    steps:
      - action: search_files
        args:
          location: home
      - action: sort_files
        args:
          location: home
        requires_confirmation: true
`
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := NewLibraryFromFile(path)
	if err != nil {
		t.Fatalf("NewLibraryFromFile failed: %v", err)
	}

	plan := lib.Lookup("cleanup my scratch folder")
	if plan == nil {
		t.Fatal("expected the file's template to trigger")
	}
	if plan.Template != "custom_cleanup" || len(plan.Steps) != 2 {
		t.Errorf("plan = %+v", plan)
	}
	if !plan.Steps[1].RequiresConfirmation {
		t.Error("confirmation gate lost when loading from file")
	}

	// Built-in templates are replaced, not merged.
	if plan := lib.Lookup("organize my downloads"); plan != nil {
		t.Errorf("built-in template leaked into the file library: %q", plan.Template)
	}

	if _, err := NewLibraryFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
