package engine

import (
	"github.com/google/uuid"

	"github.com/pixil98/jogotesto/internal/battle"
	"github.com/pixil98/jogotesto/internal/display"
	"github.com/pixil98/jogotesto/internal/wire"
	"github.com/pixil98/jogotesto/internal/world"
)

// Battle is one combat in flight: every free piece that was in the room when
// the attack landed, waiting on decisions until the match's battle timer
// fires.
type Battle struct {
	ID           string
	InstigatorID string
	Participants []*world.Piece
	Decisions    map[string]battle.Decision
}

// ParticipantIDs returns the piece ids in participant order.
func (b *Battle) ParticipantIDs() []string {
	ids := make([]string, len(b.Participants))
	for i, p := range b.Participants {
		ids[i] = p.ID
	}
	return ids
}

// StartBattle opens combat in the attacker's room. Searching pieces are
// killed where they kneel and the attacker collects the kill bonus for each.
// Everyone else free in the room is pulled in. Returns nil when fewer than
// two pieces remain to fight; the attacker is told and stays free.
func (e *Engine) StartBattle(attackerID, targetName string) *Battle {
	attacker := e.pieces[attackerID]
	if attacker == nil || attacker.State != world.PieceMoving {
		e.sendError(attackerID, "You cannot attack right now.")
		return nil
	}

	room := e.world.Room(attacker.RoomID)

	var participants []*world.Piece
	for _, id := range room.PieceIDs() {
		p := e.pieces[id]
		if p == nil {
			continue
		}
		switch p.State {
		case world.PieceSearching:
			// A searcher caught mid-search never gets to fight.
			e.killPiece(p)
			attacker.Strength += e.cfg.KillBonus
		case world.PieceMoving:
			participants = append(participants, p)
		}
	}

	if len(participants) < 2 {
		e.sendError(attackerID, "There is no one left here to fight.")
		e.checkWinCondition()
		return nil
	}

	for _, p := range participants {
		p.State = world.PieceBattling
	}

	b := &Battle{
		ID:           uuid.NewString(),
		InstigatorID: attackerID,
		Participants: participants,
		Decisions:    make(map[string]battle.Decision, len(participants)),
	}
	for _, p := range participants {
		b.Decisions[p.ID] = battle.DecisionAwaiting
	}
	e.battles[b.ID] = b

	names := make([]string, len(participants))
	inBattle := make(map[string]bool, len(participants))
	for i, p := range participants {
		names[i] = p.Name
		inBattle[p.ID] = true
	}

	for _, id := range room.PieceIDs() {
		e.send(id, wire.EventBattleStart, &wire.BattleStartPayload{
			BattleID:      b.ID,
			Attacker:      attacker.Name,
			Participants:  names,
			RoomName:      room.Name,
			IsParticipant: inBattle[id],
			IsAttacker:    id == attackerID,
			TimeLimitMs:   e.cfg.BattleTimeout.Milliseconds(),
			Defender:      targetName,
			Timestamp:     e.now(),
		})
	}

	return b
}

// RespondToAttack records a participant's decision. Only the first decision
// counts; later ones are ignored.
func (e *Engine) RespondToAttack(battleID, pieceID string, decision battle.Decision) {
	b := e.battles[battleID]
	if b == nil {
		return
	}
	if current, ok := b.Decisions[pieceID]; !ok || current != battle.DecisionAwaiting {
		return
	}
	b.Decisions[pieceID] = decision
}

// EndBattle resolves a battle and applies the outcome: the winner collects a
// kill bonus per death, escapers are flung through a random exit, the rest
// die. Calling it again for the same id is a no-op.
func (e *Engine) EndBattle(battleID string) {
	b := e.battles[battleID]
	if b == nil {
		return
	}
	delete(e.battles, battleID)

	out := battle.Resolve(b.Participants, b.Decisions, e.cfg.EscapeProb, e.rng)

	var killed, escaped []string
	for _, p := range b.Participants {
		switch out.Results[p.ID] {
		case battle.ResultEscaped:
			escaped = append(escaped, p.Name)
		case battle.ResultDied:
			killed = append(killed, p.Name)
		}
	}

	room := e.world.Room(b.Participants[0].RoomID)

	for _, p := range b.Participants {
		switch out.Results[p.ID] {
		case battle.ResultWon:
			p.Strength += e.cfg.KillBonus * len(killed)
			p.State = world.PieceMoving
		case battle.ResultEscaped:
			p.State = world.PieceMoving
			e.flee(p)
		case battle.ResultDied:
			e.killPiece(p)
		}
	}

	payload := &wire.BattleEndPayload{
		BattleID:    battleID,
		Winner:      out.WinnerName,
		Escaped:     escaped,
		Killed:      killed,
		Description: display.BattleEndDescription(out.WinnerName, out.WeaponName, killed, escaped),
		Timestamp:   e.now(),
	}
	delivered := make(map[string]bool, len(b.Participants))
	for _, p := range b.Participants {
		e.send(p.ID, wire.EventBattleEnd, payload)
		delivered[p.ID] = true
	}
	for _, id := range room.PieceIDs() {
		if !delivered[id] {
			e.send(id, wire.EventBattleEnd, payload)
		}
	}

	e.checkWinCondition()
}

// flee moves an escaping piece through a uniformly random exit. A room with
// no exits leaves the piece where it stands.
func (e *Engine) flee(p *world.Piece) {
	origin := e.world.Room(p.RoomID)
	dirs := origin.ExitDirections()
	if len(dirs) == 0 {
		return
	}
	dir := dirs[e.rng.Intn(len(dirs))]
	dest := e.world.Room(origin.Exits[dir])

	origin.RemovePiece(p.ID)
	dest.AddPiece(p.ID)
	p.RoomID = dest.ID

	e.broadcastRoom(origin, wire.EventPlayerLeft, &wire.PlayerLeftPayload{
		PlayerName: p.Name,
		Reason:     wire.LeaveReasonEscaped,
		Timestamp:  e.now(),
	}, p.ID)
	e.broadcastRoom(dest, wire.EventPlayerJoined, &wire.PlayerJoinedPayload{
		PlayerName: p.Name,
		Timestamp:  e.now(),
	}, p.ID)
	e.send(p.ID, wire.EventRoomUpdate, e.roomUpdatePayload(dest))
}
