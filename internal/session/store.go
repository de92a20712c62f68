package session

import (
	"sync"
	"time"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// Persistence is the external collaborator that keeps session contexts
// across process restarts. The backing store is an implementation detail.
type Persistence interface {
	Load(sessionID string) (*Context, error)
	Save(sessionID string, sc *Context) error
	Delete(sessionID string) error
}

// Store is the process-wide session registry. It serializes access per
// session identifier: two utterances in the same session never interleave,
// while distinct sessions proceed independently.
type Store struct {
	mu           sync.Mutex
	sessions     map[string]*entry
	persistence  Persistence
	historyDepth int
}

type entry struct {
	mu  sync.Mutex
	ctx *Context
}

func NewStore(p Persistence, historyDepth int) *Store {
	if historyDepth <= 0 {
		historyDepth = DefaultHistoryDepth
	}
	return &Store{
		sessions:     make(map[string]*entry),
		persistence:  p,
		historyDepth: historyDepth,
	}
}

// Get returns the session context, creating it on first use. Previously
// persisted state is reloaded so follow-ups survive a restart.
func (s *Store) Get(sessionID string) *Context {
	e := s.entryFor(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

// Lock takes the per-session lock for the duration of one utterance's
// resolve-execute-update cycle. The returned function releases it.
func (s *Store) Lock(sessionID string) func() {
	e := s.entryFor(sessionID)
	e.mu.Lock()
	return e.mu.Unlock
}

func (s *Store) entryFor(sessionID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		ctx := s.load(sessionID)
		e = &entry{ctx: ctx}
		s.sessions[sessionID] = e
	}
	return e
}

func (s *Store) load(sessionID string) *Context {
	if s.persistence != nil {
		if ctx, err := s.persistence.Load(sessionID); err == nil && ctx != nil {
			return ctx
		}
	}
	return &Context{SessionID: sessionID, UpdatedAt: time.Now()}
}

// Update records the outcome of one executed plan against the session and
// persists the new context. It is called with the session lock already
// held by the pipeline.
func (s *Store) Update(sessionID string, cmd *command.ParsedCommand, report *command.Report) {
	e := s.entryFor(sessionID)

	e.ctx.LastCommand = cmd
	e.ctx.LastReport = report
	if cmd != nil {
		e.ctx.LastAction = cmd.Intent
		e.ctx.addTurn("human", cmd.RawInput, s.historyDepth)
	}
	if last := report.LastResult(); last != nil {
		e.ctx.addTurn("assistant", last.Message, s.historyDepth)
	}
	e.ctx.AwaitingFollowup = report.State != command.StateCompleted
	e.ctx.UpdatedAt = time.Now()

	if s.persistence != nil {
		_ = s.persistence.Save(sessionID, e.ctx)
	}
}

// History returns the session's recorded turns, oldest first. Like Update,
// it is called with the session lock already held by the pipeline.
func (s *Store) History(sessionID string) []Turn {
	e := s.entryFor(sessionID)
	out := make([]Turn, len(e.ctx.Turns))
	copy(out, e.ctx.Turns)
	return out
}

// ResolveReference implements anaphora resolution: a token like "it"
// resolves to the primary subject of the most recent execution result,
// looking back only as far as the immediately preceding turn. Returns nil
// when no antecedent exists.
func (s *Store) ResolveReference(sessionID, token string) *EntityRef {
	if token == "" {
		return nil
	}

	e := s.entryFor(sessionID)
	if e.ctx.LastReport == nil {
		return nil
	}

	// Newest result first: "it" means the thing most recently acted on.
	results := e.ctx.LastReport.Results
	for i := len(results) - 1; i >= 0; i-- {
		if !results[i].Success {
			continue
		}
		if path, ok := results[i].Data["path"]; ok && path != "" {
			return &EntityRef{Kind: "path", Value: path}
		}
	}
	return nil
}

// EvictIdle drops sessions untouched for longer than maxIdle. Persisted
// state is kept; only the in-memory entry goes away.
func (s *Store) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	cutoff := time.Now().Add(-maxIdle)
	for id, e := range s.sessions {
		if e.mu.TryLock() {
			idle := e.ctx.UpdatedAt.Before(cutoff)
			e.mu.Unlock()
			if idle {
				delete(s.sessions, id)
				evicted++
			}
		}
	}
	return evicted
}

// End removes the session from memory and from the persistent store.
func (s *Store) End(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.persistence != nil {
		_ = s.persistence.Delete(sessionID)
	}
}
