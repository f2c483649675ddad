package api

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cpunch-go/luadecompy/internal/decompiler"
	"github.com/cpunch-go/luadecompy/loader"
	"github.com/cpunch-go/luadecompy/service"
)

var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
)

// Session is one uploaded bytecode image and the decompile service
// wrapping its decoded prototype tree.
type Session struct {
	ID        string
	Service   *service.DecompileService
	CreatedAt time.Time
}

// SessionManager manages multiple decompile sessions, keyed by
// uuid.NewString() (replacing the teacher's crypto/rand+hex scheme,
// purely to give the HTTP API conventional, URL-safe session IDs).
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	mu          sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
	}
}

// CreateSession decodes data (a .luac image) and registers a new session for it.
func (sm *SessionManager) CreateSession(data []byte) (*Session, error) {
	proto, err := loader.LoadBytes(data)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	svc := service.NewDecompileService(proto, decompiler.DefaultOptions())

	session := &Session{
		ID:        sessionID,
		Service:   svc,
		CreatedAt: time.Now(),
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[sessionID] = session
	debugLog("Session %s: created, %d top-level instructions", sessionID, len(proto.Instructions))
	return session, nil
}

// GetSession retrieves a session by ID.
func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// DestroySession removes a session by ID.
func (sm *SessionManager) DestroySession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}
	delete(sm.sessions, sessionID)
	return nil
}

// ListSessions returns every active session ID.
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
