package command

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/pixil98/go-service"

	"github.com/pixil98/jogotesto/internal/courier"
	"github.com/pixil98/jogotesto/internal/driver"
	"github.com/pixil98/jogotesto/internal/listener"
	"github.com/pixil98/jogotesto/internal/match"
	"github.com/pixil98/jogotesto/internal/session"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	clk := clock.New()

	// The embedded NATS server carries per-player delivery subjects.
	natsServer, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	worldSpec, err := cfg.World.BuildWorldSpec()
	if err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}

	// Process-wide courier: player id to delivery callback. Connections bind
	// routes on join; matches deliver through it.
	outer := courier.New()

	sessions := session.NewManager(cfg.Session.TTLDuration(), clk)
	matches := match.NewManager(cfg.Match.BuildMatchConfig(), worldSpec, outer, clk, cfg.Match.MaxMatches, nil)
	connections := listener.NewConnectionManager(sessions, matches, outer, natsServer, clk)

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lst, err := l.BuildListener(connections)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lst
	}

	// Periodic sweeps: session expiry and match garbage collection.
	var driverOpts []driver.Opt
	if d := cfg.Session.SweepDuration(); d > 0 {
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	sweeper := driver.New([]driver.Manager{sessions, matches}, driverOpts...)

	return service.WorkerList{
		"nats":      natsServer,
		"sweeper":   sweeper,
		"listeners": &listeners,
	}, nil
}
