package engine

import (
	"github.com/pixil98/jogotesto/internal/display"
	"github.com/pixil98/jogotesto/internal/wire"
	"github.com/pixil98/jogotesto/internal/world"
)

// StartSearch puts a piece into the searching state and schedules its
// completion. While searching a piece cannot move and is defenseless: an
// attack on the room kills it outright.
func (e *Engine) StartSearch(pieceID string) bool {
	p := e.pieces[pieceID]
	if p == nil || p.State != world.PieceMoving {
		e.sendError(pieceID, "You cannot search right now.")
		return false
	}

	p.State = world.PieceSearching
	room := e.world.Room(p.RoomID)

	for _, id := range room.PieceIDs() {
		isYou := id == pieceID
		e.send(id, wire.EventSearchStart, &wire.SearchStartPayload{
			PlayerName: p.Name,
			IsYou:      isYou,
			Message:    display.SearchStartMessage(room.Name, p.Name, isYou),
			Timestamp:  e.now(),
		})
	}

	e.searchTimers[pieceID] = e.clock.AfterFunc(e.cfg.SearchDuration, func() {
		e.exec(func() { e.EndSearch(pieceID) })
	})

	return true
}

// EndSearch completes a search. Invoked by the scheduled completion, or early
// by StartBattle when the searcher is attacked. If the room holds a weapon
// the searcher takes it; any weapon already held is left behind in its place.
func (e *Engine) EndSearch(pieceID string) {
	p := e.pieces[pieceID]
	if p == nil || p.State != world.PieceSearching {
		return
	}

	if t, ok := e.searchTimers[pieceID]; ok {
		t.Stop()
		delete(e.searchTimers, pieceID)
	}

	room := e.world.Room(p.RoomID)

	var found *world.Weapon
	if room.HasWeapon() {
		found = room.TakeWeapon()
		if p.Weapon != nil {
			room.SetWeapon(p.Weapon)
		}
		p.Weapon = found
	}
	p.State = world.PieceMoving

	for _, id := range room.PieceIDs() {
		payload := &wire.SearchEndPayload{
			PlayerName:  p.Name,
			IsYou:       id == pieceID,
			WeaponFound: found != nil,
			Timestamp:   e.now(),
		}
		if found != nil {
			payload.Weapon = found.Name
			payload.WeaponDmg = found.Attack
		}
		e.send(id, wire.EventSearchEnd, payload)
	}
}
