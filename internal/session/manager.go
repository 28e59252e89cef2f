// Package session maps opaque tokens to stable player identities so a
// reconnecting client can reclaim its player within the TTL.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

const (
	DefaultTTL = 30 * time.Minute
	tokenBytes = 16 // 128 bits of entropy
)

// Session binds an opaque token to a player identity.
type Session struct {
	ID           string
	PlayerID     string
	Name         string
	CreatedAt    time.Time
	LastActivity time.Time
}

// Manager is the process-wide session registry.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	clock    clock.Clock
}

func NewManager(ttl time.Duration, clk clock.Clock) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions: map[string]*Session{},
		ttl:      ttl,
		clock:    clk,
	}
}

// Create issues a fresh session with a new player identity.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	s := &Session{
		ID:           newToken(),
		PlayerID:     uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
	}
	m.sessions[s.ID] = s
	return s
}

// Resume returns the session for a token and refreshes its activity clock.
// Missing or TTL-expired tokens return nil; expired records are dropped on
// the spot.
func (m *Manager) Resume(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}

	now := m.clock.Now()
	if now.Sub(s.LastActivity) > m.ttl {
		delete(m.sessions, sessionID)
		return nil
	}

	s.LastActivity = now
	return s
}

// Touch refreshes a session's activity clock.
func (m *Manager) Touch(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.LastActivity = m.clock.Now()
	}
}

// SetName records the display name chosen at match join.
func (m *Manager) SetName(sessionID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.Name = name
	}
}

// Tick sweeps expired sessions. Run periodically by the driver. Expiry only
// cleans the session record; any in-match piece plays out the match.
func (m *Manager) Tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	for id, s := range m.sessions {
		if now.Sub(s.LastActivity) > m.ttl {
			slog.Debug("expiring session", "playerId", s.PlayerID)
			delete(m.sessions, id)
		}
	}
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func newToken() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(b)
}
