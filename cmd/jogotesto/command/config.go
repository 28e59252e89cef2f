package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Listeners []ListenerConfig `json:"listeners"`
	Nats      NatsConfig       `json:"nats"`
	World     WorldConfig      `json:"world"`
	Match     MatchConfig      `json:"match"`
	Session   SessionConfig    `json:"session"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Nats.validate())
	el.Add(c.World.validate())
	el.Add(c.Match.validate())
	el.Add(c.Session.validate())

	return el.Err()
}
