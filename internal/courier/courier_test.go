package courier

import (
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/jogotesto/internal/wire"
)

func TestDeliver(t *testing.T) {
	c := New()

	var got []*wire.GameMsg
	c.Register("p1", func(msg *wire.GameMsg) {
		got = append(got, msg)
	})

	msg := &wire.GameMsg{Event: wire.EventChatMessage, ID: "p1"}
	c.Deliver("p1", msg)

	testutil.AssertEqual(t, "delivered", len(got), 1)
	testutil.AssertEqual(t, "message", got[0], msg)
}

func TestDeliverUnboundAddressDrops(t *testing.T) {
	c := New()

	// Must not panic; the message is dropped.
	c.Deliver("nobody", &wire.GameMsg{Event: wire.EventChatMessage, ID: "nobody"})
}

func TestUnregister(t *testing.T) {
	c := New()

	delivered := 0
	c.Register("p1", func(*wire.GameMsg) { delivered++ })
	c.Deliver("p1", &wire.GameMsg{Event: wire.EventChatMessage})
	c.Unregister("p1")
	c.Deliver("p1", &wire.GameMsg{Event: wire.EventChatMessage})

	testutil.AssertEqual(t, "delivered", delivered, 1)
}

func TestRegisterReplacesBinding(t *testing.T) {
	c := New()

	first, second := 0, 0
	c.Register("p1", func(*wire.GameMsg) { first++ })
	c.Register("p1", func(*wire.GameMsg) { second++ })
	c.Deliver("p1", &wire.GameMsg{Event: wire.EventChatMessage})

	testutil.AssertEqual(t, "first binding", first, 0)
	testutil.AssertEqual(t, "second binding", second, 1)
}
