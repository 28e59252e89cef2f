// Package engine owns all live game state for one match: the world, the
// pieces, and any battles in flight. Every operation mutates state and emits
// outbound messages through the injected courier, addressed by piece id; the
// match layer readdresses them to players.
//
// The engine is not internally synchronized. The owning match serializes all
// calls, including deferred completions, through the exec function given at
// construction.
package engine

import (
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/pixil98/jogotesto/internal/courier"
	"github.com/pixil98/jogotesto/internal/display"
	"github.com/pixil98/jogotesto/internal/wire"
	"github.com/pixil98/jogotesto/internal/world"
)

const (
	DefaultSearchDuration = 3 * time.Second
	DefaultBattleTimeout  = 10 * time.Second
	DefaultEscapeProb     = 0.25
	DefaultKillBonus      = 1
	initialStrength       = 1
)

// Config carries the tunable combat and timing parameters.
type Config struct {
	SearchDuration time.Duration
	BattleTimeout  time.Duration
	EscapeProb     float64
	KillBonus      int
}

// Engine is the authoritative game state for one match.
type Engine struct {
	world   *world.World
	cfg     Config
	courier *courier.Courier
	clock   clock.Clock
	rng     *rand.Rand
	exec    func(func())

	pieces       map[string]*world.Piece
	battles      map[string]*Battle
	searchTimers map[string]*clock.Timer

	finished bool
	winnerID string
}

// New builds an engine over a constructed world. exec serializes deferred
// completions (search timers) with the caller's other engine calls; nil runs
// them inline.
func New(w *world.World, cfg Config, cr *courier.Courier, clk clock.Clock, rng *rand.Rand, exec func(func())) *Engine {
	if cfg.SearchDuration <= 0 {
		cfg.SearchDuration = DefaultSearchDuration
	}
	if cfg.BattleTimeout <= 0 {
		cfg.BattleTimeout = DefaultBattleTimeout
	}
	if cfg.KillBonus <= 0 {
		cfg.KillBonus = DefaultKillBonus
	}
	if exec == nil {
		exec = func(fn func()) { fn() }
	}
	return &Engine{
		world:        w,
		cfg:          cfg,
		courier:      cr,
		clock:        clk,
		rng:          rng,
		exec:         exec,
		pieces:       map[string]*world.Piece{},
		battles:      map[string]*Battle{},
		searchTimers: map[string]*clock.Timer{},
	}
}

// CreatePiece spawns a piece in the spawn room and announces the room to its
// occupants. An empty pieceID is replaced with a generated one.
func (e *Engine) CreatePiece(pieceID, name string) string {
	if pieceID == "" {
		pieceID = uuid.NewString()
	}

	room := e.world.SpawnRoom()
	p := &world.Piece{
		ID:       pieceID,
		Name:     name,
		RoomID:   room.ID,
		State:    world.PieceMoving,
		Strength: initialStrength,
	}
	e.pieces[pieceID] = p
	room.AddPiece(pieceID)

	e.broadcastRoomUpdate(room)
	return pieceID
}

// Piece returns a live piece by id, or nil.
func (e *Engine) Piece(pieceID string) *world.Piece {
	return e.pieces[pieceID]
}

// World exposes the engine's world for inspection.
func (e *Engine) World() *world.World {
	return e.world
}

// Finished reports whether the match has been decided.
func (e *Engine) Finished() bool {
	return e.finished
}

// WinnerID returns the surviving piece's id once finished, or "" when the
// last battle left nobody standing.
func (e *Engine) WinnerID() string {
	return e.winnerID
}

// MovePiece walks a piece through an exit. It returns false, with an error to
// the mover, when the piece is not free to move or the exit does not exist.
func (e *Engine) MovePiece(pieceID, direction string) bool {
	p := e.pieces[pieceID]
	if p == nil || p.State != world.PieceMoving {
		e.sendError(pieceID, "You cannot move right now.")
		return false
	}

	origin := e.world.Room(p.RoomID)
	destID, ok := origin.Exits[direction]
	if !ok {
		e.sendError(pieceID, "You cannot go "+direction+" from here.")
		return false
	}
	dest := e.world.Room(destID)

	origin.RemovePiece(pieceID)
	dest.AddPiece(pieceID)
	p.RoomID = dest.ID

	e.broadcastRoom(origin, wire.EventPlayerLeft, &wire.PlayerLeftPayload{
		PlayerName: p.Name,
		Reason:     wire.LeaveReasonMoved,
		Timestamp:  e.now(),
	}, pieceID)
	e.broadcastRoom(dest, wire.EventPlayerJoined, &wire.PlayerJoinedPayload{
		PlayerName: p.Name,
		Timestamp:  e.now(),
	}, pieceID)
	e.send(pieceID, wire.EventRoomUpdate, e.roomUpdatePayload(dest))

	return true
}

// Chat broadcasts a message to every piece in the sender's room, including
// the sender. Text length is validated upstream.
func (e *Engine) Chat(pieceID, text string) {
	p := e.pieces[pieceID]
	if p == nil || p.State == world.PieceDead {
		return
	}

	room := e.world.Room(p.RoomID)
	e.broadcastRoom(room, wire.EventChatMessage, &wire.ChatMessagePayload{
		PlayerName: p.Name,
		Message:    text,
		Timestamp:  e.now(),
	})
}

// SendRoomUpdate pushes the piece's current room to it. Used after a session
// resume so a reconnecting client regains context without a refresh.
func (e *Engine) SendRoomUpdate(pieceID string) {
	p := e.pieces[pieceID]
	if p == nil || p.State == world.PieceDead {
		return
	}
	e.send(pieceID, wire.EventRoomUpdate, e.roomUpdatePayload(e.world.Room(p.RoomID)))
}

// Stop cancels all outstanding search timers and drops battle state. Called
// on match cleanup; timers that already fired become no-ops.
func (e *Engine) Stop() {
	for id, t := range e.searchTimers {
		t.Stop()
		delete(e.searchTimers, id)
	}
	e.battles = map[string]*Battle{}
}

// killPiece removes a piece from play: out of its room, state dead, announced
// to the whole match.
func (e *Engine) killPiece(p *world.Piece) {
	if p.State == world.PieceDead {
		return
	}
	if t, ok := e.searchTimers[p.ID]; ok {
		t.Stop()
		delete(e.searchTimers, p.ID)
	}

	e.world.Room(p.RoomID).RemovePiece(p.ID)
	p.State = world.PieceDead

	e.broadcastAll(wire.EventPlayerLeft, &wire.PlayerLeftPayload{
		PlayerName: p.Name,
		Reason:     wire.LeaveReasonKilled,
		Timestamp:  e.now(),
	})
}

// checkWinCondition ends the match once at most one piece survives: a sole
// survivor wins, and a battle that kills everyone ends with no winner. The
// finished flag makes repeat checks (after every kill and battle) emit
// nothing.
func (e *Engine) checkWinCondition() {
	if e.finished {
		return
	}

	var alive []*world.Piece
	for _, p := range e.pieces {
		if p.State != world.PieceDead {
			alive = append(alive, p)
		}
	}
	if len(alive) > 1 {
		return
	}

	e.finished = true
	var winner *world.Piece
	if len(alive) == 1 {
		winner = alive[0]
		e.winnerID = winner.ID
	}

	for id := range e.pieces {
		payload := &wire.MatchEndPayload{Timestamp: e.now()}
		if winner != nil {
			payload.Winner = winner.Name
			payload.WinnerID = winner.ID
			payload.IsWinner = id == winner.ID
		}
		e.send(id, wire.EventMatchEnd, payload)
	}
}

func (e *Engine) now() int64 {
	return e.clock.Now().UnixMilli()
}

func (e *Engine) send(pieceID, event string, payload any) {
	e.courier.Deliver(pieceID, &wire.GameMsg{Event: event, ID: pieceID, Payload: payload})
}

func (e *Engine) sendError(pieceID, message string) {
	e.send(pieceID, wire.EventGameError, &wire.GameErrorPayload{
		Message:   message,
		Timestamp: e.now(),
	})
}

// broadcastRoom delivers the same payload to every piece in the room except
// the excluded ids.
func (e *Engine) broadcastRoom(room *world.Room, event string, payload any, exclude ...string) {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	for _, id := range room.PieceIDs() {
		if skip[id] {
			continue
		}
		e.send(id, event, payload)
	}
}

// broadcastAll delivers a payload to every piece in the match, dead or alive.
func (e *Engine) broadcastAll(event string, payload any) {
	for id := range e.pieces {
		e.send(id, event, payload)
	}
}

func (e *Engine) broadcastRoomUpdate(room *world.Room) {
	payload := e.roomUpdatePayload(room)
	e.broadcastRoom(room, wire.EventRoomUpdate, payload)
}

func (e *Engine) roomUpdatePayload(room *world.Room) *wire.RoomUpdatePayload {
	var names []string
	for _, id := range room.PieceIDs() {
		if p := e.pieces[id]; p != nil {
			names = append(names, p.Name)
		}
	}

	exits := make(map[string]string, len(room.Exits))
	for dir, destID := range room.Exits {
		exits[dir] = e.world.Room(destID).Name
	}

	var weapon *string
	if w := room.Weapon(); w != nil {
		name := w.Name
		weapon = &name
	}

	return &wire.RoomUpdatePayload{
		RoomName:    room.Name,
		Description: display.Wrap(room.Description),
		Players:     names,
		Exits:       exits,
		Weapon:      weapon,
		Timestamp:   e.now(),
	}
}
