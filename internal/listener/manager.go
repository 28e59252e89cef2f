// Package listener adapts transports to the game core. The connection
// manager owns the per-connection lifecycle: session auth, the join
// handshake, inbound command routing, and the outbound subscription that
// carries the player's frames from the bus to the socket.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/pixil98/jogotesto/internal/courier"
	"github.com/pixil98/jogotesto/internal/match"
	"github.com/pixil98/jogotesto/internal/messaging"
	"github.com/pixil98/jogotesto/internal/session"
	"github.com/pixil98/jogotesto/internal/wire"
)

// Conn is a framed bidirectional connection. The manager never sees the
// transport beneath it.
type Conn interface {
	ReadFrame() (*wire.Frame, error)
	WriteRaw(data []byte) error
	Close() error
}

// ConnectionManager glues connections to sessions and matches.
type ConnectionManager struct {
	sessions *session.Manager
	matches  *match.Manager
	outer    *courier.Courier
	bus      messaging.Bus
	pub      *messaging.PlayerPublisher
	clock    clock.Clock
}

func NewConnectionManager(sessions *session.Manager, matches *match.Manager, outer *courier.Courier, bus messaging.Bus, clk clock.Clock) *ConnectionManager {
	return &ConnectionManager{
		sessions: sessions,
		matches:  matches,
		outer:    outer,
		bus:      bus,
		pub:      messaging.NewPlayerPublisher(bus),
		clock:    clk,
	}
}

// AcceptConnection services one connection until it drops. sessionID is the
// optional token from the transport handshake; an invalid or expired token
// transparently gets a fresh session without rejoining anything.
func (cm *ConnectionManager) AcceptConnection(ctx context.Context, conn Conn, sessionID string) {
	sess := cm.authenticate(sessionID)
	playerID := sess.PlayerID

	cm.writeEvent(conn, wire.EventSession, &wire.SessionPayload{
		SessionID: sess.ID,
		PlayerID:  playerID,
		Timestamp: cm.now(),
	})

	unsub, err := cm.bus.Subscribe(messaging.PlayerSubject(playerID), func(data []byte) {
		if err := conn.WriteRaw(data); err != nil {
			slog.Debug("writing frame to connection", "playerId", playerID, "error", err)
		}
	})
	if err != nil {
		slog.Error("subscribing player subject", "playerId", playerID, "error", err)
		return
	}
	defer unsub()

	// A resumed identity may already be mid-match; rebind delivery and push
	// room context so the client can pick up where it left off.
	joined := false
	if cm.matches.MatchFor(playerID) != nil {
		joined = true
		cm.outer.Register(playerID, cm.pub.DeliverFunc(playerID))
		cm.matches.ResumePlayer(playerID)
	}

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			cm.disconnect(playerID, joined)
			return
		}
		select {
		case <-ctx.Done():
			cm.disconnect(playerID, joined)
			return
		default:
		}

		cm.sessions.Touch(sess.ID)

		switch frame.Event {
		case wire.EventJoinMatch:
			joined = cm.handleJoin(conn, sess, frame.Payload) || joined

		case wire.EventGameCommand:
			if !joined {
				cm.writeError(conn, "join a match first")
				continue
			}
			cmd, err := wire.ParseCommand(frame.Payload)
			if err != nil {
				cm.writeError(conn, userMessage(err))
				continue
			}
			if err := cm.matches.HandleCommand(playerID, cmd); err != nil {
				cm.writeError(conn, userMessage(err))
			}

		default:
			cm.writeError(conn, "unknown event "+frame.Event)
		}
	}
}

func (cm *ConnectionManager) authenticate(sessionID string) *session.Session {
	if sessionID != "" {
		if sess := cm.sessions.Resume(sessionID); sess != nil {
			return sess
		}
	}
	return cm.sessions.Create()
}

func (cm *ConnectionManager) handleJoin(conn Conn, sess *session.Session, payload json.RawMessage) bool {
	var p wire.JoinMatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		cm.writeJoinError(conn, "malformed join payload")
		return false
	}
	if err := wire.ValidatePlayerName(p.Name); err != nil {
		cm.writeJoinError(conn, userMessage(err))
		return false
	}

	info, err := cm.matches.Join(sess.PlayerID, p.Name)
	if err != nil {
		cm.writeJoinError(conn, userMessage(err))
		return false
	}

	cm.sessions.SetName(sess.ID, p.Name)
	cm.outer.Register(sess.PlayerID, cm.pub.DeliverFunc(sess.PlayerID))

	cm.writeEvent(conn, wire.EventMatchJoined, &wire.MatchJoinedPayload{
		MatchID:     info.MatchID,
		PlayerID:    sess.PlayerID,
		PlayerName:  p.Name,
		PlayerCount: info.PlayerCount,
		MaxPlayers:  info.MaxPlayers,
		Timestamp:   cm.now(),
	})
	return true
}

// disconnect tears down what the connection owned. A forming match loses the
// player; a started match keeps the piece, and the courier route stays bound
// so the player can resume.
func (cm *ConnectionManager) disconnect(playerID string, joined bool) {
	if !joined {
		return
	}
	cm.matches.RemovePlayer(playerID)
	if cm.matches.MatchFor(playerID) == nil {
		cm.outer.Unregister(playerID)
	}
}

func (cm *ConnectionManager) writeEvent(conn Conn, event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshalling payload", "event", event, "error", err)
		return
	}
	frame, err := json.Marshal(&wire.Frame{Event: event, Payload: body})
	if err != nil {
		slog.Error("marshalling frame", "event", event, "error", err)
		return
	}
	if err := conn.WriteRaw(frame); err != nil {
		slog.Debug("writing frame", "event", event, "error", err)
	}
}

func (cm *ConnectionManager) writeError(conn Conn, message string) {
	cm.writeEvent(conn, wire.EventGameError, &wire.GameErrorPayload{
		Message:   message,
		Timestamp: cm.now(),
	})
}

func (cm *ConnectionManager) writeJoinError(conn Conn, message string) {
	cm.writeEvent(conn, wire.EventJoinError, &wire.JoinErrorPayload{
		Message:   message,
		Timestamp: cm.now(),
	})
}

func (cm *ConnectionManager) now() int64 {
	return cm.clock.Now().UnixMilli()
}

// userMessage renders an error for the client, hiding anything that is not
// an intentional user-facing message.
func userMessage(err error) string {
	var ve *wire.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return "Something went wrong. Please try again."
}
