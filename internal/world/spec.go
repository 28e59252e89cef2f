package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

var validDirections = map[string]bool{"north": true, "south": true, "east": true, "west": true}

// WeaponSpec describes one weapon in a world description.
type WeaponSpec struct {
	Name        string `json:"name"`
	Attack      int    `json:"attack"`
	SpawnChance int    `json:"spawnChance"`
}

// RoomSpec describes one room in a world description.
type RoomSpec struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Exits           map[string]string `json:"exits"` // direction -> room id
	WeaponSpawnProb float64           `json:"weaponSpawnProb"`
}

// Spec is a static world description. It satisfies storage.ValidatingSpec so
// world files can be loaded through the asset store.
type Spec struct {
	SpawnRoomID string                `json:"spawnRoomId"`
	Weapons     map[string]WeaponSpec `json:"weapons"`
	Rooms       map[string]RoomSpec   `json:"rooms"`
}

// Validate checks the description's internal consistency: the spawn room and
// every exit destination must exist, and all probabilities must be in range.
func (s *Spec) Validate() error {
	el := errors.NewErrorList()

	if len(s.Rooms) == 0 {
		el.Add(fmt.Errorf("world has no rooms"))
	}

	if s.SpawnRoomID == "" {
		el.Add(fmt.Errorf("spawnRoomId is required"))
	} else if _, ok := s.Rooms[s.SpawnRoomID]; !ok {
		el.Add(fmt.Errorf("spawnRoomId %q does not reference a room", s.SpawnRoomID))
	}

	for id, w := range s.Weapons {
		if w.Name == "" {
			el.Add(fmt.Errorf("weapon %s: name is required", id))
		}
		if w.Attack < 0 {
			el.Add(fmt.Errorf("weapon %s: attack must not be negative", id))
		}
		if w.SpawnChance <= 0 {
			el.Add(fmt.Errorf("weapon %s: spawnChance must be positive", id))
		}
	}

	for id, r := range s.Rooms {
		if r.Name == "" {
			el.Add(fmt.Errorf("room %s: name is required", id))
		}
		if r.WeaponSpawnProb < 0 || r.WeaponSpawnProb > 1 {
			el.Add(fmt.Errorf("room %s: weaponSpawnProb must be within [0,1]", id))
		}
		for dir, dest := range r.Exits {
			if !validDirections[dir] {
				el.Add(fmt.Errorf("room %s: unknown exit direction %q", id, dir))
			}
			if _, ok := s.Rooms[dest]; !ok {
				el.Add(fmt.Errorf("room %s: exit %s references unknown room %q", id, dir, dest))
			}
		}
	}

	return el.Err()
}
