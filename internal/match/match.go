// Package match runs one battle-royale session from queue to winner: roster,
// state machine, command routing, and every timer the session needs. A match
// serializes all work - inbound commands and timer callbacks alike - under a
// single mutex, so the engine beneath it never sees concurrent access.
package match

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/pixil98/jogotesto/internal/battle"
	"github.com/pixil98/jogotesto/internal/courier"
	"github.com/pixil98/jogotesto/internal/display"
	"github.com/pixil98/jogotesto/internal/engine"
	"github.com/pixil98/jogotesto/internal/wire"
	"github.com/pixil98/jogotesto/internal/world"
)

// State is the match lifecycle phase.
type State int

const (
	StateQueue State = iota
	StateCountdown
	StateGrace
	StateBattle
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateQueue:
		return "queue"
	case StateCountdown:
		return "countdown"
	case StateGrace:
		return "grace"
	case StateBattle:
		return "battle"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

const (
	DefaultMinPlayers          = 2
	DefaultMaxPlayers          = 5
	DefaultCountdown           = 10 * time.Second
	DefaultGrace               = 60 * time.Second
	DefaultGraceUpdateInterval = 10 * time.Second
)

// Config carries the per-match tunables. EscapeProb is a pointer so a
// configured zero (escapes always fail) is distinguishable from unset.
type Config struct {
	MinPlayers          int
	MaxPlayers          int
	Countdown           time.Duration
	Grace               time.Duration
	GraceUpdateInterval time.Duration
	BattleTimeout       time.Duration
	SearchDuration      time.Duration
	EscapeProb          *float64
	KillBonus           int
}

func (c Config) withDefaults() Config {
	if c.MinPlayers <= 0 {
		c.MinPlayers = DefaultMinPlayers
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = DefaultMaxPlayers
	}
	if c.Countdown <= 0 {
		c.Countdown = DefaultCountdown
	}
	if c.Grace <= 0 {
		c.Grace = DefaultGrace
	}
	if c.GraceUpdateInterval <= 0 {
		c.GraceUpdateInterval = DefaultGraceUpdateInterval
	}
	if c.BattleTimeout <= 0 {
		c.BattleTimeout = engine.DefaultBattleTimeout
	}
	if c.SearchDuration <= 0 {
		c.SearchDuration = engine.DefaultSearchDuration
	}
	if c.EscapeProb == nil {
		p := engine.DefaultEscapeProb
		c.EscapeProb = &p
	}
	return c
}

// Player is one roster entry, bound to its piece once the game starts.
type Player struct {
	ID      string
	Name    string
	PieceID string
}

// JoinInfo is what the connection layer needs to acknowledge a join.
type JoinInfo struct {
	MatchID     string
	PlayerCount int
	MaxPlayers  int
}

type battleTimer struct {
	timer        *clock.Timer
	startedAt    time.Time
	participants []string
	responses    map[string]bool
}

// Match is one session.
type Match struct {
	ID string

	mu        sync.Mutex
	state     State
	cfg       Config
	worldSpec *world.Spec
	outer     *courier.Courier
	clock     clock.Clock
	rng       *rand.Rand

	players       map[string]*Player
	joinOrder     []string
	pieceToPlayer map[string]string

	game         *engine.Engine
	pieceCourier *courier.Courier

	countdownTimer *clock.Timer
	graceTimer     *clock.Timer
	graceUpdate    *clock.Timer
	graceDeadline  time.Time
	battleTimers   map[string]*battleTimer

	cleaned bool
}

// New creates a match in the queue state. Messages leave through outer,
// addressed by player id.
func New(cfg Config, spec *world.Spec, outer *courier.Courier, clk clock.Clock, rng *rand.Rand) *Match {
	return &Match{
		ID:            uuid.NewString(),
		state:         StateQueue,
		cfg:           cfg.withDefaults(),
		worldSpec:     spec,
		outer:         outer,
		clock:         clk,
		rng:           rng,
		players:       map[string]*Player{},
		pieceToPlayer: map[string]string{},
		battleTimers:  map[string]*battleTimer{},
	}
}

// State returns the current lifecycle phase.
func (m *Match) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Joinable reports whether the match still accepts players.
func (m *Match) Joinable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.state == StateQueue || m.state == StateCountdown) && len(m.players) < m.cfg.MaxPlayers
}

// PlayerCount returns the roster size.
func (m *Match) PlayerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players)
}

// AddPlayer enrolls a player while the match is still forming. Reaching the
// minimum starts the countdown.
func (m *Match) AddPlayer(playerID, name string) (*JoinInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateQueue && m.state != StateCountdown {
		return nil, wire.NewValidationError("this match has already started")
	}
	if _, ok := m.players[playerID]; ok {
		return m.joinInfoLocked(), nil
	}
	if len(m.players) >= m.cfg.MaxPlayers {
		return nil, wire.NewValidationError("this match is full")
	}

	m.players[playerID] = &Player{ID: playerID, Name: name}
	m.joinOrder = append(m.joinOrder, playerID)

	if m.state == StateQueue && len(m.players) >= m.cfg.MinPlayers {
		m.state = StateCountdown
		m.countdownTimer = m.clock.AfterFunc(m.cfg.Countdown, m.onCountdown)
	}

	return m.joinInfoLocked(), nil
}

// RemovePlayer drops a player from a forming match and tells the remaining
// roster they disconnected. Once the game has started the roster is fixed:
// the piece stays in the world and battle timers keep acting on it, so
// removal is a no-op.
func (m *Match) RemovePlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateQueue, StateCountdown:
	default:
		return false
	}

	p, ok := m.players[playerID]
	if !ok {
		return false
	}
	delete(m.players, playerID)
	for i, id := range m.joinOrder {
		if id == playerID {
			m.joinOrder = append(m.joinOrder[:i], m.joinOrder[i+1:]...)
			break
		}
	}

	for id := range m.players {
		m.outer.Deliver(id, &wire.GameMsg{
			Event: wire.EventPlayerLeft,
			ID:    id,
			Payload: &wire.PlayerLeftPayload{
				PlayerName: p.Name,
				Reason:     wire.LeaveReasonDisconnected,
				Timestamp:  m.now(),
			},
		})
	}

	if m.state == StateCountdown && len(m.players) < m.cfg.MinPlayers {
		m.countdownTimer.Stop()
		m.countdownTimer = nil
		m.state = StateQueue
	}
	return true
}

// HasPlayer reports roster membership.
func (m *Match) HasPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.players[playerID]
	return ok
}

// ResumePlayer pushes current room context to a freshly reconnected player
// so the client regains its bearings without a refresh.
func (m *Match) ResumePlayer(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[playerID]
	if !ok || m.game == nil || p.PieceID == "" {
		return
	}
	m.game.SendRoomUpdate(p.PieceID)
}

func (m *Match) onCountdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cleaned || m.state != StateCountdown {
		return
	}
	m.startGameLocked()
}

// startGameLocked builds the world and engine, spawns a piece per player,
// and opens the grace period.
func (m *Match) startGameLocked() {
	w, err := world.Build(m.worldSpec, m.rng)
	if err != nil {
		slog.Error("match failed to start", "matchId", m.ID, "error", err)
		for id := range m.players {
			m.outer.Deliver(id, &wire.GameMsg{
				Event: wire.EventJoinError,
				ID:    id,
				Payload: &wire.JoinErrorPayload{
					Message:   "The match could not be started.",
					Timestamp: m.now(),
				},
			})
		}
		m.state = StateEnded
		return
	}

	m.pieceCourier = courier.New()
	m.game = engine.New(w, engine.Config{
		SearchDuration: m.cfg.SearchDuration,
		BattleTimeout:  m.cfg.BattleTimeout,
		EscapeProb:     *m.cfg.EscapeProb,
		KillBonus:      m.cfg.KillBonus,
	}, m.pieceCourier, m.clock, m.rng, m.run)

	for _, playerID := range m.joinOrder {
		p := m.players[playerID]
		pieceID := uuid.NewString()
		p.PieceID = pieceID
		m.pieceToPlayer[pieceID] = playerID

		m.pieceCourier.Register(pieceID, m.readdress(playerID))
		m.game.CreatePiece(pieceID, p.Name)
	}

	m.state = StateGrace
	m.graceDeadline = m.clock.Now().Add(m.cfg.Grace)
	m.graceTimer = m.clock.AfterFunc(m.cfg.Grace, m.onGraceEnd)
	m.broadcastGraceLocked(true)
	m.graceUpdate = m.clock.AfterFunc(m.cfg.GraceUpdateInterval, m.onGraceUpdate)
}

// readdress builds the piece-to-player courier hop: clone the message,
// rewrite its address, and translate any piece id the payload leaks.
func (m *Match) readdress(playerID string) courier.DeliverFunc {
	return func(msg *wire.GameMsg) {
		c := msg.Clone()
		c.ID = playerID
		if me, ok := c.Payload.(*wire.MatchEndPayload); ok {
			p := *me
			p.WinnerID = m.pieceToPlayer[me.WinnerID]
			c.Payload = &p
		}
		m.outer.Deliver(playerID, c)
	}
}

// run serializes engine-scheduled completions with inbound commands.
func (m *Match) run(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cleaned {
		return
	}
	fn()
}

func (m *Match) onGraceUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cleaned || m.state != StateGrace {
		return
	}
	m.broadcastGraceLocked(true)
	m.graceUpdate = m.clock.AfterFunc(m.cfg.GraceUpdateInterval, m.onGraceUpdate)
}

func (m *Match) onGraceEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cleaned || m.state != StateGrace {
		return
	}
	m.state = StateBattle
	if m.graceUpdate != nil {
		m.graceUpdate.Stop()
		m.graceUpdate = nil
	}
	m.broadcastGraceLocked(false)
}

func (m *Match) broadcastGraceLocked(active bool) {
	var remaining time.Duration
	if active {
		remaining = m.graceDeadline.Sub(m.clock.Now())
	}
	payload := &wire.GracePeriodPayload{
		Active:        active,
		TimeRemaining: remaining.Milliseconds(),
		Message:       display.GraceMessage(active, int64(math.Ceil(remaining.Seconds()))),
		Timestamp:     m.now(),
	}
	for id := range m.players {
		m.outer.Deliver(id, &wire.GameMsg{Event: wire.EventGracePeriod, ID: id, Payload: payload})
	}
}

// HandleCommand routes one validated command from a player. All feedback,
// including errors, flows back through the courier. An engine panic is
// contained here and surfaced as a generic error.
func (m *Match) HandleCommand(playerID string, cmd *wire.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered engine panic", "matchId", m.ID, "playerId", playerID, "command", cmd.Type.String(), "panic", r)
			m.sendErrorLocked(playerID, "Something went wrong. Please try again.")
		}
	}()

	switch m.state {
	case StateQueue, StateCountdown:
		m.sendErrorLocked(playerID, "The match has not started yet.")
		return
	case StateEnded:
		return
	}

	p, ok := m.players[playerID]
	if !ok || p.PieceID == "" {
		m.sendErrorLocked(playerID, "You are not in this match.")
		return
	}

	if m.state == StateGrace && cmd.Type == wire.CommandAttack {
		remaining := int64(math.Ceil(m.graceDeadline.Sub(m.clock.Now()).Seconds()))
		m.sendErrorLocked(playerID, fmt.Sprintf("You cannot attack during the grace period. %ds remaining.", remaining))
		return
	}

	switch cmd.Type {
	case wire.CommandMove:
		m.game.MovePiece(p.PieceID, cmd.Direction)
	case wire.CommandSearch:
		m.game.StartSearch(p.PieceID)
	case wire.CommandAttack:
		if b := m.game.StartBattle(p.PieceID, cmd.TargetID); b != nil {
			m.registerBattleTimerLocked(b)
		}
	case wire.CommandRespond:
		m.recordResponseLocked(cmd.BattleID, p.PieceID, cmd.Decision)
	case wire.CommandChat:
		m.game.Chat(p.PieceID, cmd.Message)
	}

	m.checkFinishedLocked()
}

func (m *Match) registerBattleTimerLocked(b *engine.Battle) {
	bt := &battleTimer{
		startedAt:    m.clock.Now(),
		participants: b.ParticipantIDs(),
		responses:    map[string]bool{},
	}
	battleID := b.ID
	bt.timer = m.clock.AfterFunc(m.cfg.BattleTimeout, func() {
		m.onBattleTimeout(battleID)
	})
	m.battleTimers[battleID] = bt
}

// recordResponseLocked notes a decision and closes the battle early once
// every participant has spoken.
func (m *Match) recordResponseLocked(battleID, pieceID, decision string) {
	bt, ok := m.battleTimers[battleID]
	if !ok {
		m.sendErrorLocked(m.pieceToPlayer[pieceID], "That battle is already over.")
		return
	}

	member := false
	for _, id := range bt.participants {
		if id == pieceID {
			member = true
			break
		}
	}
	if !member {
		m.sendErrorLocked(m.pieceToPlayer[pieceID], "You are not in that battle.")
		return
	}

	d := battle.DecisionEscape
	if decision == wire.DecisionAttack {
		d = battle.DecisionAttack
	}
	m.game.RespondToAttack(battleID, pieceID, d)
	bt.responses[pieceID] = true

	if len(bt.responses) == len(bt.participants) {
		bt.timer.Stop()
		delete(m.battleTimers, battleID)
		m.game.EndBattle(battleID)
	}
}

// onBattleTimeout resolves a battle whose deadline passed: everyone who
// never answered is treated as escaping.
func (m *Match) onBattleTimeout(battleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cleaned {
		return
	}
	bt, ok := m.battleTimers[battleID]
	if !ok {
		return
	}
	delete(m.battleTimers, battleID)

	for _, pieceID := range bt.participants {
		if !bt.responses[pieceID] {
			m.game.RespondToAttack(battleID, pieceID, battle.DecisionEscape)
		}
	}
	m.game.EndBattle(battleID)
	m.checkFinishedLocked()
}

func (m *Match) checkFinishedLocked() {
	if m.state != StateEnded && m.game != nil && m.game.Finished() {
		m.state = StateEnded
		m.stopTimersLocked()
	}
}

func (m *Match) stopTimersLocked() {
	if m.countdownTimer != nil {
		m.countdownTimer.Stop()
		m.countdownTimer = nil
	}
	if m.graceTimer != nil {
		m.graceTimer.Stop()
		m.graceTimer = nil
	}
	if m.graceUpdate != nil {
		m.graceUpdate.Stop()
		m.graceUpdate = nil
	}
	for id, bt := range m.battleTimers {
		bt.timer.Stop()
		delete(m.battleTimers, id)
	}
}

// Cleanup cancels every timer this match owns and releases its state. Safe
// to call repeatedly; timers firing afterwards have no observable effect.
func (m *Match) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cleaned {
		return
	}
	m.cleaned = true
	m.state = StateEnded

	m.stopTimersLocked()
	if m.game != nil {
		m.game.Stop()
	}
	if m.pieceCourier != nil {
		for pieceID := range m.pieceToPlayer {
			m.pieceCourier.Unregister(pieceID)
		}
	}
	m.players = map[string]*Player{}
	m.joinOrder = nil
	m.pieceToPlayer = map[string]string{}
}

// Engine exposes the running engine, nil before the game starts.
func (m *Match) Engine() *engine.Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game
}

func (m *Match) joinInfoLocked() *JoinInfo {
	return &JoinInfo{
		MatchID:     m.ID,
		PlayerCount: len(m.players),
		MaxPlayers:  m.cfg.MaxPlayers,
	}
}

func (m *Match) sendErrorLocked(playerID, message string) {
	if playerID == "" {
		return
	}
	m.outer.Deliver(playerID, &wire.GameMsg{
		Event: wire.EventGameError,
		ID:    playerID,
		Payload: &wire.GameErrorPayload{
			Message:   message,
			Timestamp: m.now(),
		},
	})
}

func (m *Match) now() int64 {
	return m.clock.Now().UnixMilli()
}
