// Package driver runs the periodic housekeeping the managers need: session
// expiry and match garbage collection.
package driver

import (
	"context"
	"log/slog"
	"time"
)

const DefaultTickLength = 10 * time.Second

// Manager is anything that wants a periodic sweep.
type Manager interface {
	Tick(context.Context) error
}

// Driver ticks its managers on a fixed interval until the context ends. A
// failing sweep is logged and retried next tick rather than stopping the
// server.
type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func New(managers []Manager, opts ...Opt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, m := range d.managers {
				if err := m.Tick(ctx); err != nil {
					slog.Warn("sweep failed", "error", err)
				}
			}
		}
	}
}

type Opt func(*Driver)

func WithTickLength(tickLength time.Duration) Opt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}
