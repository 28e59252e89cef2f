package world

import (
	"fmt"
	"math/rand"
	"sort"
)

// World is the static room graph plus the weapon catalog for one match.
// It never changes shape after construction; only room contents (pieces,
// weapons) move.
type World struct {
	SpawnRoomID string
	Rooms       map[string]*Room
	Weapons     map[string]*Weapon
}

// Build instantiates a world from a validated description. Each room draws
// once against its weaponSpawnProb; hits receive a weapon chosen by weighted
// sampling proportional to spawnChance. Iteration is over sorted ids so a
// fixed rng seed always produces the same world.
func Build(spec *Spec, rng *rand.Rand) (*World, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("validating world description: %w", err)
	}

	w := &World{
		SpawnRoomID: spec.SpawnRoomID,
		Rooms:       make(map[string]*Room, len(spec.Rooms)),
		Weapons:     make(map[string]*Weapon, len(spec.Weapons)),
	}

	weaponIDs := make([]string, 0, len(spec.Weapons))
	for id, ws := range spec.Weapons {
		w.Weapons[id] = &Weapon{
			ID:          id,
			Name:        ws.Name,
			Attack:      ws.Attack,
			SpawnChance: ws.SpawnChance,
		}
		weaponIDs = append(weaponIDs, id)
	}
	sort.Strings(weaponIDs)

	roomIDs := make([]string, 0, len(spec.Rooms))
	for id := range spec.Rooms {
		roomIDs = append(roomIDs, id)
	}
	sort.Strings(roomIDs)

	for _, id := range roomIDs {
		rs := spec.Rooms[id]
		exits := make(map[string]string, len(rs.Exits))
		for dir, dest := range rs.Exits {
			exits[dir] = dest
		}
		room := NewRoom(id, rs.Name, rs.Description, exits, rs.WeaponSpawnProb)

		if len(weaponIDs) > 0 && rng.Float64() < rs.WeaponSpawnProb {
			room.SetWeapon(w.pickWeapon(weaponIDs, rng))
		}

		w.Rooms[id] = room
	}

	return w, nil
}

// pickWeapon samples the catalog weighted by spawnChance and returns a fresh
// instance. Each spawned weapon is its own object so it can sit in exactly one
// room or hand; the catalog entries are never placed directly.
func (w *World) pickWeapon(sortedIDs []string, rng *rand.Rand) *Weapon {
	total := 0
	for _, id := range sortedIDs {
		total += w.Weapons[id].SpawnChance
	}

	roll := rng.Intn(total)
	pick := sortedIDs[len(sortedIDs)-1]
	for _, id := range sortedIDs {
		roll -= w.Weapons[id].SpawnChance
		if roll < 0 {
			pick = id
			break
		}
	}

	instance := *w.Weapons[pick]
	return &instance
}

// Room returns a room by id, or nil.
func (w *World) Room(id string) *Room {
	return w.Rooms[id]
}

// SpawnRoom returns the distinguished spawn room.
func (w *World) SpawnRoom() *Room {
	return w.Rooms[w.SpawnRoomID]
}
