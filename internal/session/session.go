// Package session owns per-session conversational state: what the user
// just did, what "it" refers to, and a bounded history of recent turns.
package session

import (
	"regexp"
	"time"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// DefaultHistoryDepth bounds how many turns a session remembers.
const DefaultHistoryDepth = 10

// Turn is one utterance/response pair entry in the session history.
type Turn struct {
	Role      string    `json:"role"` // "human" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// EntityRef is a resolved anaphoric reference: the concrete thing a token
// like "it" points at.
type EntityRef struct {
	Kind  string `json:"kind"` // currently always "path"
	Value string `json:"value"`
}

// Context is the durable per-session record. One instance per active
// session; mutated only through the Store after each plan execution.
type Context struct {
	SessionID        string                 `json:"session_id"`
	LastCommand      *command.ParsedCommand `json:"last_command,omitempty"`
	LastReport       *command.Report        `json:"last_report,omitempty"`
	LastAction       command.Intent         `json:"last_action,omitempty"`
	AwaitingFollowup bool                   `json:"awaiting_followup"`
	Turns            []Turn                 `json:"turns,omitempty"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func (c *Context) addTurn(role, content string, depth int) {
	c.Turns = append(c.Turns, Turn{Role: role, Content: content, Timestamp: time.Now()})
	if len(c.Turns) > depth {
		c.Turns = c.Turns[len(c.Turns)-depth:]
	}
}

var anaphoraRe = regexp.MustCompile(`(?i)\b(it|that|them|those)\b`)

// AnaphoricToken returns the first anaphoric token in the text, or "" when
// the text stands on its own.
func AnaphoricToken(text string) string {
	if m := anaphoraRe.FindString(text); m != "" {
		return m
	}
	return ""
}
