// Package session holds per-conversation state.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
)

// Session is one conversation. LastDocument holds the most recent structured
// layout and is replaced, never merged, by the next one.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	LastDocument *floorplan.Node
	LastShape    floorplan.Shape

	mu sync.RWMutex // guards the fields above
	// turn serializes image submissions within the session.
	turn sync.Mutex
}

// New starts a session.
func New() *Session {
	now := time.Now()
	return &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// Store replaces the last document.
func (s *Session) Store(shape floorplan.Shape, doc *floorplan.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastDocument = doc
	s.LastShape = shape
	s.UpdatedAt = time.Now()
}

// Clear drops the last document.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastDocument = nil
	s.LastShape = ""
	s.UpdatedAt = time.Now()
}

// Last returns a copy of the last stored document, or nil.
func (s *Session) Last() (floorplan.Shape, *floorplan.Node) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastShape, s.LastDocument.Clone()
}

// Lock and Unlock bracket one turn.
func (s *Session) Lock()   { s.turn.Lock() }
func (s *Session) Unlock() { s.turn.Unlock() }

// Manager owns the live sessions of a multi-user surface.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Start creates and registers a new session.
func (m *Manager) Start() *Session {
	s := New()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// End clears and removes the session. Holders of the *Session see it empty.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	s.Clear()
	delete(m.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
