package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one caller-scoped conversation with its own bounded memory.
// Lock is held for a full orchestration run, not per append, so memory
// ordering invariants hold under concurrent requests on the same id.
type Session struct {
	ID        string
	Memory    *WindowMemory
	CreatedAt time.Time

	mu sync.Mutex
}

// Lock acquires the session's serialization scope.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's serialization scope.
func (s *Session) Unlock() { s.mu.Unlock() }

// SessionStore is the process-wide session map. Sessions are created on
// first use and live until explicitly cleared; nothing survives a process
// restart, which is documented behavior rather than a defect.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	window   int
	logger   *zap.Logger
}

// NewSessionStore creates a session store whose sessions hold at most
// window messages each.
func NewSessionStore(window int, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		window:   window,
		logger:   logger,
	}
}

// Create makes a new session with a generated id.
func (st *SessionStore) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &Session{
		ID:        uuid.NewString(),
		Memory:    NewWindowMemory(st.window),
		CreatedAt: time.Now(),
	}
	st.sessions[s.ID] = s
	st.logger.Info("session created", zap.String("session_id", s.ID))
	return s
}

// GetOrCreate returns the session for id, creating it (or a fresh one
// when id is empty) on first reference.
func (st *SessionStore) GetOrCreate(id string) *Session {
	if id == "" {
		return st.Create()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := &Session{
		ID:        id,
		Memory:    NewWindowMemory(st.window),
		CreatedAt: time.Now(),
	}
	st.sessions[id] = s
	st.logger.Info("session created", zap.String("session_id", id))
	return s
}

// Get returns the session for id if it exists.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Clear removes a session. It reports whether the session existed.
func (st *SessionStore) Clear(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	st.logger.Info("session cleared", zap.String("session_id", id))
	return true
}

// Count returns the number of live sessions.
func (st *SessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
