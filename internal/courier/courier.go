// Package courier provides the delivery indirection between game layers: an
// opaque address mapped to a delivery callback. The engine addresses pieces,
// the match layer readdresses to players, and the connection layer owns the
// final hop to the transport.
package courier

import (
	"log/slog"
	"sync"

	"github.com/pixil98/jogotesto/internal/wire"
)

// DeliverFunc receives one outbound message for an address.
type DeliverFunc func(msg *wire.GameMsg)

// Courier is an address to delivery-callback registry.
type Courier struct {
	mu     sync.RWMutex
	routes map[string]DeliverFunc
}

func New() *Courier {
	return &Courier{routes: map[string]DeliverFunc{}}
}

// Register binds an address to a delivery callback, replacing any previous
// binding.
func (c *Courier) Register(address string, fn DeliverFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[address] = fn
}

// Unregister removes an address binding.
func (c *Courier) Unregister(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.routes, address)
}

// Deliver routes a message to the address's callback. Messages for unbound
// addresses are dropped; this is the normal dead-letter path for departed
// recipients, so it logs at info.
func (c *Courier) Deliver(address string, msg *wire.GameMsg) {
	c.mu.RLock()
	fn, ok := c.routes[address]
	c.mu.RUnlock()

	if !ok {
		slog.Info("dropping message for unbound address", "address", address, "event", msg.Event)
		return
	}

	fn(msg)
}
