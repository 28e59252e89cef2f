package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/jogotesto/internal/courier"
	"github.com/pixil98/jogotesto/internal/wire"
)

// Bus is the slice of the NATS server the game layers use.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// PlayerSubject names the per-player delivery subject.
func PlayerSubject(playerID string) string {
	return fmt.Sprintf("player.%s", playerID)
}

// PlayerPublisher turns outbound GameMsgs into framed events on the player's
// subject. The courier binds one of these per player, so the match layer can
// stay ignorant of both framing and transport.
type PlayerPublisher struct {
	bus Bus
}

func NewPlayerPublisher(bus Bus) *PlayerPublisher {
	return &PlayerPublisher{bus: bus}
}

// DeliverFunc returns the courier callback for one player.
func (p *PlayerPublisher) DeliverFunc(playerID string) courier.DeliverFunc {
	subject := PlayerSubject(playerID)
	return func(msg *wire.GameMsg) {
		payload, err := json.Marshal(msg.Payload)
		if err != nil {
			slog.Error("marshalling outbound payload", "event", msg.Event, "playerId", playerID, "error", err)
			return
		}
		frame, err := json.Marshal(&wire.Frame{Event: msg.Event, Payload: payload})
		if err != nil {
			slog.Error("marshalling outbound frame", "event", msg.Event, "playerId", playerID, "error", err)
			return
		}
		if err := p.bus.Publish(subject, frame); err != nil {
			slog.Warn("publishing outbound frame", "event", msg.Event, "playerId", playerID, "error", err)
		}
	}
}
