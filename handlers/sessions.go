package handlers

import (
	"sync"

	"github.com/google/uuid"

	"go-homereel/boundary"
	"go-homereel/media"
)

// Session holds the per-listing state a client builds up across calls:
// uploaded photos and the boundary polygon, before a video run.
type Session struct {
	ID       string
	Media    *media.Set
	Boundary *boundary.Model
}

// SessionStore hands out sessions by id. Unknown ids create fresh
// sessions, so clients can mint their own.
type SessionStore struct {
	detector boundary.Detector

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(detector boundary.Detector) *SessionStore {
	return &SessionStore{
		detector: detector,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for id, creating it first if needed.
// An empty id gets a new random one.
func (s *SessionStore) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := &Session{
		ID:       id,
		Media:    media.NewSet(),
		Boundary: boundary.NewModel(s.detector, true),
	}
	s.sessions[id] = sess
	return sess
}
