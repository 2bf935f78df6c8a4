package auth

import (
	"sync"

	"github.com/ojpb2000/voice-chatbot-backend/internal/model/auth"
)

// Store abstracts session persistence so handlers receive it by injection
// instead of reaching for ambient state.
type Store interface {
	Get(id string) (auth.Session, bool)
	Put(session auth.Session)
	Delete(id string)
}

// MemoryStore keeps sessions in a mutex-guarded map. Suitable for the demo
// deployment; sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]auth.Session
}

// NewMemoryStore bootstraps an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]auth.Session),
	}
}

// Get retrieves a session by token.
func (s *MemoryStore) Get(id string) (auth.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Put stores a session under its token.
func (s *MemoryStore) Put(session auth.Session) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
}

// Delete removes a session. Deleting an unknown token is a no-op.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
