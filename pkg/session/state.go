package session

import (
	"errors"
	"sync"
	"time"

	"project-echo-be/pkg/persona"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnInProgress  = errors.New("a turn is already running for this session")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is one line of the visible chat log.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// State is the per-browser-session chat state. The HTTP layer owns its
// lifecycle; orchestration steps receive it by reference.
//
// History is append-only. Only the goroutine holding the turn lock appends
// during a turn, but reads may come from other requests, hence mu.
type State struct {
	ID        string
	CreatedAt time.Time

	mu      sync.RWMutex
	history []Entry
	mode    persona.Mode

	turn sync.Mutex
}

// New creates a session in the default ensemble mode.
func New(id string, now time.Time) *State {
	return &State{
		ID:        id,
		CreatedAt: now,
		mode:      persona.EnsembleMode(),
	}
}

// Append adds an entry to the end of the history.
func (s *State) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, e)
}

// History returns a copy of the history so callers cannot rewrite past turns.
func (s *State) History() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.history))
	copy(out, s.history)
	return out
}

func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

func (s *State) Mode() persona.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the persona set used from the next turn on.
func (s *State) SetMode(m persona.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// BeginTurn claims the session for one turn. Callers must EndTurn.
func (s *State) BeginTurn() error {
	if !s.turn.TryLock() {
		return ErrTurnInProgress
	}
	return nil
}

func (s *State) EndTurn() {
	s.turn.Unlock()
}
