package world

import "sort"

// Weapon grants additive attack damage to its holder. Weapons are immutable;
// the same weapon is held by at most one piece at a time.
type Weapon struct {
	ID          string
	Name        string
	Attack      int
	SpawnChance int
}

// Room is a node in the world graph. Exits are directed; the graph need not
// be symmetric. A room holds at most one weapon at a time.
type Room struct {
	ID          string
	Name        string
	Description string
	Exits       map[string]string // direction -> room id
	SpawnProb   float64

	pieces map[string]struct{}
	weapon *Weapon
}

// NewRoom builds an empty room. Exits may be nil.
func NewRoom(id, name, description string, exits map[string]string, spawnProb float64) *Room {
	if exits == nil {
		exits = map[string]string{}
	}
	return &Room{
		ID:          id,
		Name:        name,
		Description: description,
		Exits:       exits,
		SpawnProb:   spawnProb,
		pieces:      map[string]struct{}{},
	}
}

// AddPiece records a piece as present in the room.
func (r *Room) AddPiece(pieceID string) {
	r.pieces[pieceID] = struct{}{}
}

// RemovePiece removes a piece from the room.
func (r *Room) RemovePiece(pieceID string) {
	delete(r.pieces, pieceID)
}

// HasPiece reports whether the piece is currently in the room.
func (r *Room) HasPiece(pieceID string) bool {
	_, ok := r.pieces[pieceID]
	return ok
}

// PieceIDs returns the ids of all pieces in the room in sorted order.
func (r *Room) PieceIDs() []string {
	ids := make([]string, 0, len(r.pieces))
	for id := range r.pieces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PieceCount returns the number of pieces in the room.
func (r *Room) PieceCount() int {
	return len(r.pieces)
}

// HasWeapon reports whether a weapon lies in the room.
func (r *Room) HasWeapon() bool {
	return r.weapon != nil
}

// Weapon returns the weapon in the room, or nil.
func (r *Room) Weapon() *Weapon {
	return r.weapon
}

// SetWeapon places a weapon in the room, replacing any previous one.
func (r *Room) SetWeapon(w *Weapon) {
	r.weapon = w
}

// TakeWeapon removes and returns the room's weapon, or nil if there is none.
func (r *Room) TakeWeapon() *Weapon {
	w := r.weapon
	r.weapon = nil
	return w
}

// ExitDirections returns the room's exit directions in sorted order.
func (r *Room) ExitDirections() []string {
	dirs := make([]string, 0, len(r.Exits))
	for d := range r.Exits {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}
