package world

// PieceState tracks what a piece is currently doing. Dead is terminal.
type PieceState int

const (
	PieceMoving PieceState = iota
	PieceSearching
	PieceBattling
	PieceDead
)

func (s PieceState) String() string {
	switch s {
	case PieceMoving:
		return "moving"
	case PieceSearching:
		return "searching"
	case PieceBattling:
		return "battling"
	case PieceDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Piece is a player's in-world avatar. Exactly one exists per player per
// match. A dead piece is in no room and never re-enters play.
type Piece struct {
	ID       string
	Name     string
	RoomID   string
	State    PieceState
	Strength int
	Weapon   *Weapon
}

// Damage is the piece's total attack value: strength plus held weapon attack.
func (p *Piece) Damage() int {
	d := p.Strength
	if p.Weapon != nil {
		d += p.Weapon.Attack
	}
	return d
}

// WeaponName returns the held weapon's display name, or "" when unarmed.
func (p *Piece) WeaponName() string {
	if p.Weapon == nil {
		return ""
	}
	return p.Weapon.Name
}
