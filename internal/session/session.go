// Package session holds the per-session state that lives outside the message store: the
// configuration selection shaping the system prompt, and the single-slot pending prompt queued by
// the quick-suggestion buttons.
package session

import (
	"sync"

	"github.com/MegaGrindStone/jester-web-ui/internal/models"
	"github.com/MegaGrindStone/jester-web-ui/internal/prompt"
)

// State is the mutable state of one browser session. Each session's state is independent; the
// mutex only guards against concurrent requests from multiple tabs of the same session.
type State struct {
	id string

	mu       sync.Mutex
	pending  string
	settings models.Settings
}

// New creates a session state with the default configuration selection and an empty pending slot.
func New(id string) *State {
	return &State{
		id:       id,
		settings: prompt.DefaultSettings(),
	}
}

// ID returns the session identifier this state belongs to.
func (s *State) ID() string {
	return s.id
}

// SetPending queues a prompt for the next processing step. The slot holds at most one prompt;
// setting it again before it is taken replaces the previous value.
func (s *State) SetPending(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = text
}

// TakePending returns the queued prompt and atomically resets the slot, so a given pending prompt
// is delivered exactly once. It returns the empty string when nothing is pending.
func (s *State) TakePending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.pending
	s.pending = ""
	return text
}

// Settings returns the session's current configuration selection.
func (s *State) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces the session's configuration selection. Changing settings affects only
// future turns; stored history is untouched.
func (s *State) SetSettings(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Registry maps session IDs to their states, creating states on first use. Session state is held
// in memory only and ends with the process.
type Registry struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		states: make(map[string]*State),
	}
}

// Get returns the state for the given session ID, creating it if this is the first time the
// session is seen.
func (r *Registry) Get(id string) *State {
	r.mu.RLock()
	st, ok := r.states[id]
	r.mu.RUnlock()
	if ok {
		return st
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.states[id]; ok {
		return st
	}
	st = New(id)
	r.states[id] = st
	return st
}
