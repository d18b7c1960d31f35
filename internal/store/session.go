package store

import (
	"sync"
	"time"

	"ledger-chat-backend/internal/conversation"
)

// SessionStore keeps per-conversation state between turns. Entries expire
// after the TTL so abandoned confirm/selection prompts do not linger forever.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]sessionRecord
}

type sessionRecord struct {
	state     conversation.SessionState
	updatedAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, sessions: make(map[string]sessionRecord)}
}

// Get returns the session's state, or a fresh zero state when the session is
// unknown or expired.
func (s *SessionStore) Get(sessionID string) conversation.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return conversation.SessionState{}
	}
	if s.ttl > 0 && time.Since(rec.updatedAt) > s.ttl {
		delete(s.sessions, sessionID)
		return conversation.SessionState{}
	}
	return rec.state
}

func (s *SessionStore) Put(sessionID string, state conversation.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = sessionRecord{state: state, updatedAt: time.Now()}
	s.evictExpiredLocked()
}

func (s *SessionStore) evictExpiredLocked() {
	if s.ttl <= 0 {
		return
	}
	now := time.Now()
	for id, rec := range s.sessions {
		if now.Sub(rec.updatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
