package battle

import (
	"math/rand"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/jogotesto/internal/world"
)

func piece(id, name string, strength int, weaponAttack int) *world.Piece {
	p := &world.Piece{ID: id, Name: name, Strength: strength}
	if weaponAttack > 0 {
		p.Weapon = &world.Weapon{ID: id + "-weapon", Name: "blade", Attack: weaponAttack}
	}
	return p
}

func TestResolve(t *testing.T) {
	tests := map[string]struct {
		participants []*world.Piece
		decisions    map[string]Decision
		escapeProb   float64
		expWinner    string
		expResults   map[string]Result
	}{
		"strongest attacker wins": {
			participants: []*world.Piece{
				piece("a", "A", 1, 0),
				piece("b", "B", 1, 3),
			},
			decisions:  map[string]Decision{"a": DecisionAttack, "b": DecisionAttack},
			escapeProb: 1.0,
			expWinner:  "b",
			expResults: map[string]Result{"a": ResultDied, "b": ResultWon},
		},
		"tie breaks to earliest participant": {
			participants: []*world.Piece{
				piece("a", "A", 2, 0),
				piece("b", "B", 2, 0),
				piece("c", "C", 2, 0),
			},
			decisions:  map[string]Decision{"a": DecisionAttack, "b": DecisionAttack, "c": DecisionAttack},
			escapeProb: 1.0,
			expWinner:  "a",
			expResults: map[string]Result{"a": ResultWon, "b": ResultDied, "c": ResultDied},
		},
		"escape always succeeds at probability one": {
			participants: []*world.Piece{
				piece("a", "A", 1, 0),
				piece("b", "B", 1, 0),
			},
			decisions:  map[string]Decision{"a": DecisionAttack, "b": DecisionEscape},
			escapeProb: 1.0,
			expWinner:  "a",
			expResults: map[string]Result{"a": ResultWon, "b": ResultEscaped},
		},
		"escape always fails at probability zero": {
			participants: []*world.Piece{
				piece("a", "A", 1, 0),
				piece("b", "B", 1, 0),
			},
			decisions:  map[string]Decision{"a": DecisionAttack, "b": DecisionEscape},
			escapeProb: 0.0,
			expWinner:  "a",
			expResults: map[string]Result{"a": ResultWon, "b": ResultDied},
		},
		"awaiting coerces to escape": {
			participants: []*world.Piece{
				piece("a", "A", 1, 0),
				piece("b", "B", 1, 0),
			},
			decisions:  map[string]Decision{"a": DecisionAttack, "b": DecisionAwaiting},
			escapeProb: 1.0,
			expWinner:  "a",
			expResults: map[string]Result{"a": ResultWon, "b": ResultEscaped},
		},
		"nobody attacks means no winner": {
			participants: []*world.Piece{
				piece("a", "A", 1, 0),
				piece("b", "B", 1, 0),
			},
			decisions:  map[string]Decision{"a": DecisionEscape, "b": DecisionAwaiting},
			escapeProb: 1.0,
			expWinner:  "",
			expResults: map[string]Result{"a": ResultEscaped, "b": ResultEscaped},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))
			out := Resolve(tt.participants, tt.decisions, tt.escapeProb, rng)

			testutil.AssertEqual(t, "winner", out.WinnerID, tt.expWinner)
			testutil.AssertEqual(t, "result count", len(out.Results), len(tt.participants))
			for id, exp := range tt.expResults {
				testutil.AssertEqual(t, "result for "+id, out.Results[id], exp)
			}
		})
	}
}

func TestResolveAccountsForEveryParticipant(t *testing.T) {
	participants := []*world.Piece{
		piece("a", "A", 1, 0),
		piece("b", "B", 3, 0),
		piece("c", "C", 1, 2),
		piece("d", "D", 1, 0),
	}
	decisions := map[string]Decision{
		"a": DecisionAttack,
		"b": DecisionAttack,
		"c": DecisionEscape,
	}

	out := Resolve(participants, decisions, 0.5, rand.New(rand.NewSource(42)))

	won, escaped, died := 0, 0, 0
	for _, r := range out.Results {
		switch r {
		case ResultWon:
			won++
		case ResultEscaped:
			escaped++
		case ResultDied:
			died++
		}
	}
	testutil.AssertEqual(t, "total results", won+escaped+died, len(participants))
	testutil.AssertEqual(t, "winners", won, 1)
	testutil.AssertEqual(t, "winner name", out.WinnerName, "B")
}
