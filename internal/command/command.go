package command

import "errors"

// Intent is the closed set of actions the console understands.
// Tools register against these names; the matcher, templates and LLM
// planner may only emit intents from this set.
type Intent string

const (
	IntentCreateFolder    Intent = "create_folder"
	IntentMoveItem        Intent = "move_item"
	IntentDeleteItem      Intent = "delete_item"
	IntentSearchFiles     Intent = "search_files"
	IntentSortFiles       Intent = "sort_files"
	IntentOpenApp         Intent = "open_app"
	IntentCloseApp        Intent = "close_app"
	IntentGetSystemInfo   Intent = "get_system_info"
	IntentRunCommand      Intent = "run_command"
	IntentBrowseWeb       Intent = "browse_web"
	IntentBrowserNavigate Intent = "browser_navigate"
	IntentBrowserSearch   Intent = "browser_search"
	IntentTypeText        Intent = "type_text"
	IntentScreenCapture   Intent = "screen_capture"
	IntentCapabilityQuery Intent = "capability_query"
	IntentUnknown         Intent = "unknown"
)

// Tier identifies which resolution strategy produced a command or plan.
type Tier string

const (
	TierPattern  Tier = "pattern"
	TierTemplate Tier = "template"
	TierLLM      Tier = "llm"
)

// ParsedCommand is the structured form of one utterance. It is created by
// the resolver and never mutated afterwards; a new utterance yields a new
// ParsedCommand.
type ParsedCommand struct {
	Intent               Intent            `json:"intent"`
	Params               map[string]string `json:"params"`
	Confidence           float64           `json:"confidence"`
	Tier                 Tier              `json:"tier"`
	Template             string            `json:"template,omitempty"`
	RawInput             string            `json:"raw_input"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
}

// Step is one executable action inside a Plan. Arg values may contain
// {{stepN.key}} placeholders referencing the data payload of a strictly
// earlier step's result.
type Step struct {
	Action               Intent            `json:"action"`
	Args                 map[string]string `json:"args"`
	Description          string            `json:"description,omitempty"`
	ContinueOnFailure    bool              `json:"continue_on_failure,omitempty"`
	RequiresConfirmation bool              `json:"requires_confirmation,omitempty"`
}

// Plan is an ordered sequence of steps derived from one utterance.
// A Plan is never empty: resolving to zero steps is ErrNoActionResolved.
type Plan struct {
	ID       string `json:"id"`
	Goal     string `json:"goal"`
	Tier     Tier   `json:"tier"`
	Template string `json:"template,omitempty"`
	Steps    []Step `json:"steps"`
}

// ExecutionResult is the outcome of one step.
type ExecutionResult struct {
	Action  Intent            `json:"action"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
	Err     string            `json:"error,omitempty"`
}

// PlanState is the terminal state of an execution run.
type PlanState string

const (
	StatePending            PlanState = "pending"
	StateRunning            PlanState = "running"
	StateCompleted          PlanState = "completed"
	StateFailed             PlanState = "failed"
	StatePartiallyCompleted PlanState = "partially_completed"
)

// Report is the plan-level outcome: a terminal state plus the ordered
// per-step results collected before execution finished or halted.
type Report struct {
	PlanID  string            `json:"plan_id"`
	Goal    string            `json:"goal"`
	State   PlanState         `json:"state"`
	Results []ExecutionResult `json:"results"`
}

// Resolution and execution failures. Tier errors abort before any side
// effect; step failures are data, recorded in the result sequence.
var (
	// ErrAmbiguousReference: the utterance refers to "it"/"that" but no
	// antecedent exists in the session history.
	ErrAmbiguousReference = errors.New("ambiguous reference: nothing to refer back to")

	// ErrResolutionUnavailable: the LLM tier timed out or is unreachable.
	ErrResolutionUnavailable = errors.New("resolution unavailable: language model did not respond")

	// ErrNoActionResolved: no tier produced a plan for the utterance.
	ErrNoActionResolved = errors.New("no action resolved")

	// ErrPlanCoherence: a generated plan is internally inconsistent
	// (for example a placeholder referencing a later or missing step).
	ErrPlanCoherence = errors.New("plan coherence error")
)

// Success reports whether the run finished with every required step done.
func (r *Report) Success() bool {
	return r.State == StateCompleted
}

// LastResult returns the most recent step result, or nil if none ran.
func (r *Report) LastResult() *ExecutionResult {
	if len(r.Results) == 0 {
		return nil
	}
	return &r.Results[len(r.Results)-1]
}
