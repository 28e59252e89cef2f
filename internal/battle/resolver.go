// Package battle resolves a completed combat round. The resolver is a pure
// function of the participants, their decisions, and the injected rng, which
// keeps it trivially testable with fixed seeds.
package battle

import (
	"math/rand"

	"github.com/pixil98/jogotesto/internal/world"
)

// Decision is a participant's choice for the round.
type Decision int

const (
	DecisionAwaiting Decision = iota
	DecisionAttack
	DecisionEscape
)

// Result is a participant's fate after resolution.
type Result int

const (
	ResultWon Result = iota
	ResultEscaped
	ResultDied
)

func (r Result) String() string {
	switch r {
	case ResultWon:
		return "won"
	case ResultEscaped:
		return "escaped"
	case ResultDied:
		return "died"
	default:
		return "unknown"
	}
}

// Outcome is the per-participant resolution of one battle.
type Outcome struct {
	Results    map[string]Result
	WinnerID   string // empty when nobody attacked
	WinnerName string
	WeaponName string // winner's weapon display name, "" if unarmed
}

// Resolve maps participants and decisions to an outcome. Undecided
// participants are coerced to escape. The winner is the attacker with the
// greatest damage (strength plus weapon attack); ties break in favor of the
// earliest participant in the given order. Every escaper rolls independently
// against escapeProb; failed escapes and losing attackers die. When nobody
// attacks there is no winner and everyone rolls to escape.
func Resolve(participants []*world.Piece, decisions map[string]Decision, escapeProb float64, rng *rand.Rand) *Outcome {
	out := &Outcome{Results: make(map[string]Result, len(participants))}

	var winner *world.Piece
	for _, p := range participants {
		if decisions[p.ID] != DecisionAttack {
			continue
		}
		if winner == nil || p.Damage() > winner.Damage() {
			winner = p
		}
	}

	if winner != nil {
		out.WinnerID = winner.ID
		out.WinnerName = winner.Name
		out.WeaponName = winner.WeaponName()
	}

	for _, p := range participants {
		if winner != nil && p.ID == winner.ID {
			out.Results[p.ID] = ResultWon
			continue
		}
		switch decisions[p.ID] {
		case DecisionAttack:
			out.Results[p.ID] = ResultDied
		default:
			// Awaiting coerces to escape.
			if rng.Float64() < escapeProb {
				out.Results[p.ID] = ResultEscaped
			} else {
				out.Results[p.ID] = ResultDied
			}
		}
	}

	return out
}
