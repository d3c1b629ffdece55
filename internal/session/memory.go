package session

import "sync"

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore constructs an in-memory Store. Sessions do not survive a restart.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[int64]Session),
	}
}

// Get returns the session for a user if it exists, otherwise a default MainMenu session.
func (m *memoryStore) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}
	return Session{Step: MainMenu}
}

// Put overwrites the user's session.
func (m *memoryStore) Put(userID int64, s Session) {
	if s.Step == "" {
		s.Step = MainMenu
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

// Reset removes the entire session for a user.
func (m *memoryStore) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
}
