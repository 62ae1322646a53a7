package checkout

import "sync"

// Store keeps live checkout sessions keyed by session ID.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create builds a new session from cfg and registers it.
func (st *Store) Create(cfg SessionConfig) *Session {
	s := NewSession(cfg)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given ID, or nil.
func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// Remove closes the session and drops it from the store.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	s := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if s != nil {
		s.Close()
	}
}
