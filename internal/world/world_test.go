package world

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func testSpec() *Spec {
	return &Spec{
		SpawnRoomID: "a",
		Weapons: map[string]WeaponSpec{
			"dagger": {Name: "a dagger", Attack: 1, SpawnChance: 3},
			"axe":    {Name: "an axe", Attack: 4, SpawnChance: 1},
		},
		Rooms: map[string]RoomSpec{
			"a": {Name: "Room A", Exits: map[string]string{"north": "b"}, WeaponSpawnProb: 1},
			"b": {Name: "Room B", Exits: map[string]string{"south": "a"}, WeaponSpawnProb: 0},
		},
	}
}

func TestSpecValidate(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Spec)
		expErr string
	}{
		"valid": {
			mutate: func(s *Spec) {},
		},
		"unknown spawn room": {
			mutate: func(s *Spec) { s.SpawnRoomID = "nowhere" },
			expErr: "spawnRoomId",
		},
		"missing spawn room": {
			mutate: func(s *Spec) { s.SpawnRoomID = "" },
			expErr: "spawnRoomId is required",
		},
		"exit to unknown room": {
			mutate: func(s *Spec) {
				r := s.Rooms["a"]
				r.Exits = map[string]string{"north": "void"}
				s.Rooms["a"] = r
			},
			expErr: "unknown room",
		},
		"bad exit direction": {
			mutate: func(s *Spec) {
				r := s.Rooms["a"]
				r.Exits = map[string]string{"up": "b"}
				s.Rooms["a"] = r
			},
			expErr: "unknown exit direction",
		},
		"spawn probability out of range": {
			mutate: func(s *Spec) {
				r := s.Rooms["a"]
				r.WeaponSpawnProb = 1.5
				s.Rooms["a"] = r
			},
			expErr: "weaponSpawnProb",
		},
		"negative weapon attack": {
			mutate: func(s *Spec) {
				w := s.Weapons["axe"]
				w.Attack = -1
				s.Weapons["axe"] = w
			},
			expErr: "attack must not be negative",
		},
		"zero spawn chance": {
			mutate: func(s *Spec) {
				w := s.Weapons["axe"]
				w.SpawnChance = 0
				s.Weapons["axe"] = w
			},
			expErr: "spawnChance must be positive",
		},
		"no rooms": {
			mutate: func(s *Spec) { s.Rooms = nil },
			expErr: "no rooms",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			spec := testSpec()
			tt.mutate(spec)

			err := spec.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestBuildSeedsWeapons(t *testing.T) {
	w, err := Build(testSpec(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Room a always spawns a weapon, room b never does.
	testutil.AssertEqual(t, "room a has weapon", w.Room("a").HasWeapon(), true)
	testutil.AssertEqual(t, "room b has weapon", w.Room("b").HasWeapon(), false)
	testutil.AssertEqual(t, "spawn room", w.SpawnRoom().ID, "a")
}

func TestBuildIsDeterministicForSeed(t *testing.T) {
	spec := &Spec{
		SpawnRoomID: "a",
		Weapons: map[string]WeaponSpec{
			"dagger": {Name: "a dagger", Attack: 1, SpawnChance: 3},
			"axe":    {Name: "an axe", Attack: 4, SpawnChance: 1},
		},
		Rooms: map[string]RoomSpec{
			"a": {Name: "Room A", WeaponSpawnProb: 0.5},
			"b": {Name: "Room B", WeaponSpawnProb: 0.5},
			"c": {Name: "Room C", WeaponSpawnProb: 0.5},
			"d": {Name: "Room D", WeaponSpawnProb: 0.5},
		},
	}

	first, err := Build(spec, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Build(spec, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "room count", len(second.Rooms), len(first.Rooms))
	for id, room := range first.Rooms {
		other := second.Room(id)
		testutil.AssertEqual(t, "weapon presence in "+id, other.HasWeapon(), room.HasWeapon())
		if room.HasWeapon() {
			testutil.AssertEqual(t, "weapon in "+id, other.Weapon().ID, room.Weapon().ID)
		}
	}
}

func TestBuildSpawnsDistinctWeaponInstances(t *testing.T) {
	spec := &Spec{
		SpawnRoomID: "a",
		Weapons: map[string]WeaponSpec{
			"sword": {Name: "a sword", Attack: 2, SpawnChance: 1},
		},
		Rooms: map[string]RoomSpec{
			"a": {Name: "Room A", WeaponSpawnProb: 1},
			"b": {Name: "Room B", WeaponSpawnProb: 1},
		},
	}

	w, err := Build(spec, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both rooms spawned the only catalog weapon, but each holds its own
	// instance; picking one up must not empty the other room's hand.
	wa, wb := w.Room("a").Weapon(), w.Room("b").Weapon()
	if wa == nil || wb == nil {
		t.Fatal("expected a weapon in both rooms")
	}
	if wa == wb {
		t.Fatal("expected distinct weapon instances in each room")
	}
	if wa == w.Weapons["sword"] || wb == w.Weapons["sword"] {
		t.Fatal("expected room weapons to be copies, not the catalog entry")
	}
}

func TestBuildRejectsInvalidSpec(t *testing.T) {
	spec := testSpec()
	spec.SpawnRoomID = "nowhere"

	_, err := Build(spec, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "validating world description") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRoomWeaponTransfer(t *testing.T) {
	r := NewRoom("a", "Room A", "", nil, 0)
	testutil.AssertEqual(t, "empty room has weapon", r.HasWeapon(), false)

	w := &Weapon{ID: "dagger", Name: "a dagger", Attack: 1, SpawnChance: 1}
	r.SetWeapon(w)
	testutil.AssertEqual(t, "room has weapon", r.HasWeapon(), true)

	taken := r.TakeWeapon()
	testutil.AssertEqual(t, "taken weapon", taken.ID, "dagger")
	testutil.AssertEqual(t, "room cleared", r.HasWeapon(), false)
	if r.TakeWeapon() != nil {
		t.Error("expected nil from empty room")
	}
}

func TestPieceDamage(t *testing.T) {
	tests := map[string]struct {
		piece *Piece
		exp   int
	}{
		"unarmed":       {piece: &Piece{Strength: 2}, exp: 2},
		"with a weapon": {piece: &Piece{Strength: 2, Weapon: &Weapon{Attack: 3}}, exp: 5},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "damage", tt.piece.Damage(), tt.exp)
		})
	}
}
