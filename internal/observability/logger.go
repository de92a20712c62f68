package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeResolution   EventType = "resolution"
	EventTypePlan         EventType = "plan"
	EventTypeStep         EventType = "step"
	EventTypeToolCall     EventType = "tool_call"
	EventTypePolicyCheck  EventType = "policy_check"
	EventTypeConfirmation EventType = "confirmation"
	EventTypeSession      EventType = "session"
	EventTypeLLM          EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	PlanID    string    `json:"plan_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger writes structured JSON events. LLM traffic additionally goes to a
// size-rotated jsonl file for offline inspection.
type Logger struct {
	mu         sync.Mutex
	out        io.Writer
	llmLogPath string
	maxSize    int64
}

func NewLogger(logDir string) *Logger {
	return &Logger{
		out:        os.Stderr,
		llmLogPath: filepath.Join(logDir, "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// SetOutput redirects event output (the CLI routes it through the
// terminal writer so events never tear the prompt).
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.out = w
	l.mu.Unlock()
}

// Log emits a structured JSON event.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("failed to marshal event: %v", err)
		return
	}

	l.mu.Lock()
	fmt.Fprintln(l.out, string(data))
	l.mu.Unlock()

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogResolution(sessionID, tier string, detail any) {
	l.Log(Event{
		Type:      EventTypeResolution,
		SessionID: sessionID,
		Data:      map[string]any{"tier": tier, "detail": detail},
	})
}

func (l *Logger) LogPlan(sessionID, planID string, goal string, steps int) {
	l.Log(Event{
		Type:      EventTypePlan,
		SessionID: sessionID,
		PlanID:    planID,
		Data:      map[string]any{"goal": goal, "steps": steps},
	})
}

func (l *Logger) LogStep(sessionID, planID string, index int, action string, success bool) {
	l.Log(Event{
		Type:      EventTypeStep,
		SessionID: sessionID,
		PlanID:    planID,
		Data: map[string]any{
			"index":   index,
			"action":  action,
			"success": success,
		},
	})
}

func (l *Logger) LogToolCall(sessionID, planID string, action string, args map[string]string) {
	l.Log(Event{
		Type:      EventTypeToolCall,
		SessionID: sessionID,
		PlanID:    planID,
		Data:      map[string]any{"action": action, "args": args},
	})
}

func (l *Logger) LogPolicyCheck(sessionID, planID string, action, effect, reason string) {
	l.Log(Event{
		Type:      EventTypePolicyCheck,
		SessionID: sessionID,
		PlanID:    planID,
		Data: map[string]string{
			"action": action,
			"effect": effect,
			"reason": reason,
		},
	})
}

func (l *Logger) LogSession(sessionID, event string, detail any) {
	l.Log(Event{
		Type:      EventTypeSession,
		SessionID: sessionID,
		Data:      map[string]any{"event": event, "detail": detail},
	})
}

func (l *Logger) LogConfirmation(sessionID, planID string, decision string) {
	l.Log(Event{
		Type:      EventTypeConfirmation,
		SessionID: sessionID,
		PlanID:    planID,
		Data:      map[string]string{"decision": decision},
	})
}

func (l *Logger) LogLLM(sessionID string, prompt any, response string) {
	l.Log(Event{
		Type:      EventTypeLLM,
		SessionID: sessionID,
		Data: map[string]any{
			"prompt":   prompt,
			"response": response,
		},
	})
}
