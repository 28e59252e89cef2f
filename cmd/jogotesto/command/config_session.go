package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type SessionConfig struct {
	TTL           string `json:"ttl"`
	SweepInterval string `json:"sweep_interval"`
}

func (c *SessionConfig) validate() error {
	el := errors.NewErrorList()

	for name, d := range map[string]string{
		"ttl":            c.TTL,
		"sweep_interval": c.SweepInterval,
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

func (c *SessionConfig) TTLDuration() time.Duration {
	return parseDuration(c.TTL)
}

func (c *SessionConfig) SweepDuration() time.Duration {
	return parseDuration(c.SweepInterval)
}
