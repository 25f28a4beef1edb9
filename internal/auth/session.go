package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// DefaultSessionTTL is the inactivity window before a session expires.
const DefaultSessionTTL = 24 * time.Hour

// tokenBytes gives 256 bits of entropy per token.
const tokenBytes = 32

// Session is an issued login token with its sliding expiry.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// SessionManager is the process-wide session table. It is the only
// shared mutable state in the core; operations on different tokens do
// not interfere beyond the table lock. Expired entries are pruned
// lazily on access rather than by a background timer.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a new session with a cryptographically random token.
func (m *SessionManager) Create(username string) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, fmt.Errorf("issue session token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session := &Session{
		Token:     token,
		Username:  username,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.sessions[token] = session
	return *session, nil
}

// Validate resolves the token to its username and slides the expiry
// window forward. Expired sessions are removed on the way out.
func (m *SessionManager) Validate(token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return "", ErrSessionNotFound
	}
	if m.now().After(session.ExpiresAt) {
		delete(m.sessions, token)
		return "", ErrSessionExpired
	}
	session.ExpiresAt = m.now().Add(m.ttl)
	return session.Username, nil
}

// Invalidate removes the session. Unknown tokens are a no-op so logout
// is idempotent.
func (m *SessionManager) Invalidate(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Active reports the number of unexpired sessions.
func (m *SessionManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	now := m.now()
	for token, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, token)
			continue
		}
		count++
	}
	return count
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
