package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/jogotesto/internal/match"
)

type MatchConfig struct {
	MinPlayers          int      `json:"min_players"`
	MaxPlayers          int      `json:"max_players"`
	Countdown           string   `json:"countdown"`
	Grace               string   `json:"grace"`
	GraceUpdateInterval string   `json:"grace_update_interval"`
	BattleTimeout       string   `json:"battle_timeout"`
	SearchDuration      string   `json:"search_duration"`
	EscapeProb          *float64 `json:"escape_prob"`
	KillBonus           int      `json:"kill_bonus"`
	MaxMatches          int      `json:"max_matches"`
}

func (c *MatchConfig) validate() error {
	el := errors.NewErrorList()

	if c.MinPlayers != 0 && c.MinPlayers < 2 {
		el.Add(fmt.Errorf("min_players must be at least 2"))
	}
	if c.MaxPlayers != 0 && c.MaxPlayers < c.MinPlayers {
		el.Add(fmt.Errorf("max_players must be at least min_players"))
	}
	if c.EscapeProb != nil && (*c.EscapeProb < 0 || *c.EscapeProb > 1) {
		el.Add(fmt.Errorf("escape_prob must be within [0,1]"))
	}
	if c.KillBonus < 0 {
		el.Add(fmt.Errorf("kill_bonus must not be negative"))
	}
	if c.MaxMatches < 0 {
		el.Add(fmt.Errorf("max_matches must not be negative"))
	}

	for name, d := range map[string]string{
		"countdown":             c.Countdown,
		"grace":                 c.Grace,
		"grace_update_interval": c.GraceUpdateInterval,
		"battle_timeout":        c.BattleTimeout,
		"search_duration":       c.SearchDuration,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			el.Add(fmt.Errorf("parsing %s: %w", name, err))
		}
	}

	return el.Err()
}

// BuildMatchConfig converts the validated section into match tunables.
// Unset fields fall back to the package defaults.
func (c *MatchConfig) BuildMatchConfig() match.Config {
	cfg := match.Config{
		MinPlayers: c.MinPlayers,
		MaxPlayers: c.MaxPlayers,
		EscapeProb: c.EscapeProb,
		KillBonus:  c.KillBonus,
	}
	cfg.Countdown = parseDuration(c.Countdown)
	cfg.Grace = parseDuration(c.Grace)
	cfg.GraceUpdateInterval = parseDuration(c.GraceUpdateInterval)
	cfg.BattleTimeout = parseDuration(c.BattleTimeout)
	cfg.SearchDuration = parseDuration(c.SearchDuration)
	return cfg
}

// parseDuration returns 0 for empty or invalid strings; validate has already
// rejected the invalid ones.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
