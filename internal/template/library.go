// Package template holds the predefined multi-step workflows the console
// can run without consulting the language model. Templates are static data:
// they are parsed once at process start and never mutated afterwards.
package template

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

//go:embed templates.yaml
var builtinTemplates []byte

type templateFile struct {
	Templates []templateDef `yaml:"templates"`
}

type templateDef struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Triggers    []trigger `yaml:"triggers"`
	Steps       []stepDef `yaml:"steps"`
}

// trigger matches when every keyword is present in the goal text
// (keyword-set containment, not scored).
type trigger struct {
	All []string `yaml:"all"`
}

type stepDef struct {
	Action               string            `yaml:"action"`
	Args                 map[string]string `yaml:"args"`
	Description          string            `yaml:"description"`
	ContinueOnFailure    bool              `yaml:"continue_on_failure"`
	RequiresConfirmation bool              `yaml:"requires_confirmation"`
}

// Library is the registry of named workflows.
type Library struct {
	templates []templateDef
	now       func() time.Time
}

// NewLibrary loads the built-in templates.
func NewLibrary() (*Library, error) {
	return parse(builtinTemplates)
}

// NewLibraryFromFile loads templates from a user-supplied YAML file,
// replacing the built-in set.
func NewLibraryFromFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Library, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	for _, tpl := range file.Templates {
		if len(tpl.Steps) == 0 {
			return nil, fmt.Errorf("template %q has no steps", tpl.Name)
		}
	}
	return &Library{templates: file.Templates, now: time.Now}, nil
}

// Lookup matches goal text against the template triggers and, on a hit,
// instantiates the template into a plan with run-time values substituted.
// It returns nil when no template matches.
func (l *Library) Lookup(goal string) *command.Plan {
	lower := strings.ToLower(goal)

	for _, tpl := range l.templates {
		if !tpl.matches(lower) {
			continue
		}
		return l.instantiate(tpl, goal)
	}
	return nil
}

// List returns "name: description" lines for every template, in file order.
func (l *Library) List() []string {
	out := make([]string, 0, len(l.templates))
	for _, tpl := range l.templates {
		out = append(out, fmt.Sprintf("%s: %s", tpl.Name, tpl.Description))
	}
	return out
}

func (t templateDef) matches(lower string) bool {
	for _, trig := range t.Triggers {
		if len(trig.All) == 0 {
			continue
		}
		hit := true
		for _, kw := range trig.All {
			if !strings.Contains(lower, strings.ToLower(kw)) {
				hit = false
				break
			}
		}
		if hit {
			return true
		}
	}
	return false
}

func (l *Library) instantiate(tpl templateDef, goal string) *command.Plan {
	date := l.now().Format("2006-01-02")

	steps := make([]command.Step, 0, len(tpl.Steps))
	for _, def := range tpl.Steps {
		args := make(map[string]string, len(def.Args))
		for k, v := range def.Args {
			args[k] = strings.ReplaceAll(v, "{date}", date)
		}
		steps = append(steps, command.Step{
			Action:               command.Intent(def.Action),
			Args:                 args,
			Description:          def.Description,
			ContinueOnFailure:    def.ContinueOnFailure,
			RequiresConfirmation: def.RequiresConfirmation,
		})
	}

	return &command.Plan{
		ID:       uuid.NewString(),
		Goal:     goal,
		Tier:     command.TierTemplate,
		Template: tpl.Name,
		Steps:    steps,
	}
}
