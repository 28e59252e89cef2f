package match

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/pixil98/jogotesto/internal/courier"
	"github.com/pixil98/jogotesto/internal/wire"
	"github.com/pixil98/jogotesto/internal/world"
)

const DefaultMaxMatches = 1

// Manager owns the process's matches: it routes players to a joinable match,
// creates one when none exists, and sweeps finished or abandoned matches.
type Manager struct {
	mu         sync.Mutex
	cfg        Config
	worldSpec  *world.Spec
	outer      *courier.Courier
	clock      clock.Clock
	maxMatches int
	newRng     func() *rand.Rand

	matches  map[string]*Match
	byPlayer map[string]*Match
}

// NewManager builds a manager. newRng seeds each match's rng; nil uses the
// global source.
func NewManager(cfg Config, spec *world.Spec, outer *courier.Courier, clk clock.Clock, maxMatches int, newRng func() *rand.Rand) *Manager {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	if newRng == nil {
		newRng = func() *rand.Rand {
			return rand.New(rand.NewSource(rand.Int63()))
		}
	}
	return &Manager{
		cfg:        cfg,
		worldSpec:  spec,
		outer:      outer,
		clock:      clk,
		maxMatches: maxMatches,
		newRng:     newRng,
		matches:    map[string]*Match{},
		byPlayer:   map[string]*Match{},
	}
}

// Join places a player into a joinable match, creating one if capacity
// allows. Joining twice returns the current match's info.
func (m *Manager) Join(playerID, name string) (*JoinInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byPlayer[playerID]; ok {
		return existing.AddPlayer(playerID, name)
	}

	target := m.findOrCreateJoinableLocked()
	if target == nil {
		return nil, wire.NewValidationError("no match is accepting players right now")
	}

	info, err := target.AddPlayer(playerID, name)
	if err != nil {
		return nil, err
	}
	m.byPlayer[playerID] = target
	return info, nil
}

func (m *Manager) findOrCreateJoinableLocked() *Match {
	for _, match := range m.matches {
		if match.Joinable() {
			return match
		}
	}
	if len(m.matches) >= m.maxMatches {
		return nil
	}

	match := New(m.cfg, m.worldSpec, m.outer, m.clock, m.newRng())
	m.matches[match.ID] = match
	slog.Info("created match", "matchId", match.ID)
	return match
}

// MatchFor returns the player's match, or nil.
func (m *Manager) MatchFor(playerID string) *Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byPlayer[playerID]
}

// HandleCommand routes a command to the player's match.
func (m *Manager) HandleCommand(playerID string, cmd *wire.Command) error {
	match := m.MatchFor(playerID)
	if match == nil {
		return wire.NewValidationError("join a match first")
	}
	match.HandleCommand(playerID, cmd)
	return nil
}

// RemovePlayer detaches a player from its match. Forming matches drop the
// player; started matches keep the piece in play and only the routing entry
// goes away when the match is swept.
func (m *Manager) RemovePlayer(playerID string) {
	m.mu.Lock()
	match, ok := m.byPlayer[playerID]
	m.mu.Unlock()
	if !ok {
		return
	}

	if match.RemovePlayer(playerID) {
		m.mu.Lock()
		delete(m.byPlayer, playerID)
		m.mu.Unlock()
	}
}

// ResumePlayer restores room context after a reconnection.
func (m *Manager) ResumePlayer(playerID string) {
	if match := m.MatchFor(playerID); match != nil {
		match.ResumePlayer(playerID)
	}
}

// Tick sweeps matches that are over or empty. Run periodically by the
// driver.
func (m *Manager) Tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, match := range m.matches {
		if match.State() != StateEnded && match.PlayerCount() > 0 {
			continue
		}

		match.Cleanup()
		delete(m.matches, id)
		for playerID, pm := range m.byPlayer {
			if pm == match {
				delete(m.byPlayer, playerID)
			}
		}
		slog.Info("swept match", "matchId", id)
	}
	return nil
}

// MatchCount returns the number of live matches.
func (m *Manager) MatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matches)
}
