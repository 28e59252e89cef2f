package listener

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pixil98/go-testutil"

	"github.com/pixil98/jogotesto/internal/courier"
	"github.com/pixil98/jogotesto/internal/match"
	"github.com/pixil98/jogotesto/internal/session"
	"github.com/pixil98/jogotesto/internal/wire"
	"github.com/pixil98/jogotesto/internal/world"
)

// scriptConn replays a fixed inbound script and records everything written.
type scriptConn struct {
	script []*wire.Frame
	next   int
	writes [][]byte
	closed bool
}

func (c *scriptConn) ReadFrame() (*wire.Frame, error) {
	if c.next >= len(c.script) {
		return nil, io.EOF
	}
	f := c.script[c.next]
	c.next++
	return f, nil
}

func (c *scriptConn) WriteRaw(data []byte) error {
	c.writes = append(c.writes, data)
	return nil
}

func (c *scriptConn) Close() error {
	c.closed = true
	return nil
}

// frames decodes everything written to the connection.
func (c *scriptConn) frames(t *testing.T) []*wire.Frame {
	t.Helper()
	out := make([]*wire.Frame, 0, len(c.writes))
	for _, data := range c.writes {
		var f wire.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			t.Fatalf("decoding written frame: %v", err)
		}
		out = append(out, &f)
	}
	return out
}

func lastFrame(t *testing.T, c *scriptConn, event string) *wire.Frame {
	t.Helper()
	var found *wire.Frame
	for _, f := range c.frames(t) {
		if f.Event == event {
			found = f
		}
	}
	return found
}

func countFrames(t *testing.T, c *scriptConn, event string) int {
	t.Helper()
	n := 0
	for _, f := range c.frames(t) {
		if f.Event == event {
			n++
		}
	}
	return n
}

// memBus is an in-process Bus for tests.
type memBus struct {
	mu   sync.Mutex
	subs map[string][]func([]byte)
}

func newMemBus() *memBus {
	return &memBus{subs: map[string][]func([]byte){}}
}

func (b *memBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	handlers := append([]func([]byte){}, b.subs[subject]...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(data)
	}
	return nil
}

func (b *memBus) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[subject] = append(b.subs[subject], handler)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs[subject] = nil
	}, nil
}

func frame(t *testing.T, event string, payload any) *wire.Frame {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshalling payload: %v", err)
	}
	return &wire.Frame{Event: event, Payload: body}
}

func newTestManager(t *testing.T) (*ConnectionManager, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	spec := &world.Spec{
		SpawnRoomID: "a",
		Rooms: map[string]world.RoomSpec{
			"a": {Name: "Room A", Exits: map[string]string{"north": "b"}},
			"b": {Name: "Room B", Exits: map[string]string{"south": "a"}},
		},
	}
	outer := courier.New()
	sessions := session.NewManager(30*time.Minute, mock)
	matches := match.NewManager(match.Config{MinPlayers: 2, MaxPlayers: 5}, spec, outer, mock, 1, func() *rand.Rand {
		return rand.New(rand.NewSource(7))
	})
	return NewConnectionManager(sessions, matches, outer, newMemBus(), mock), mock
}

func TestConnectionReceivesSession(t *testing.T) {
	cm, _ := newTestManager(t)
	conn := &scriptConn{}

	cm.AcceptConnection(context.Background(), conn, "")

	sess := lastFrame(t, conn, wire.EventSession)
	if sess == nil {
		t.Fatal("expected a session frame")
	}
	var p wire.SessionPayload
	if err := json.Unmarshal(sess.Payload, &p); err != nil {
		t.Fatalf("decoding session payload: %v", err)
	}
	if p.SessionID == "" || p.PlayerID == "" {
		t.Fatalf("expected identifiers, got %+v", p)
	}
}

func TestJoinMatch(t *testing.T) {
	cm, _ := newTestManager(t)
	conn := &scriptConn{script: []*wire.Frame{
		frame(t, wire.EventJoinMatch, &wire.JoinMatchPayload{Name: "Alice"}),
	}}

	cm.AcceptConnection(context.Background(), conn, "")

	joined := lastFrame(t, conn, wire.EventMatchJoined)
	if joined == nil {
		t.Fatal("expected a matchJoined frame")
	}
	var p wire.MatchJoinedPayload
	if err := json.Unmarshal(joined.Payload, &p); err != nil {
		t.Fatalf("decoding matchJoined payload: %v", err)
	}
	testutil.AssertEqual(t, "name", p.PlayerName, "Alice")
	testutil.AssertEqual(t, "count", p.PlayerCount, 1)
	testutil.AssertEqual(t, "max", p.MaxPlayers, 5)
}

func TestJoinWithBadName(t *testing.T) {
	tests := map[string]string{
		"too short":      "A",
		"too long":       "ThisNameGoesOnFarPastTheLimit",
		"bad characters": "Al!ce",
	}

	for name, player := range tests {
		t.Run(name, func(t *testing.T) {
			cm, _ := newTestManager(t)
			conn := &scriptConn{script: []*wire.Frame{
				frame(t, wire.EventJoinMatch, &wire.JoinMatchPayload{Name: player}),
			}}

			cm.AcceptConnection(context.Background(), conn, "")

			testutil.AssertEqual(t, "join rejected", countFrames(t, conn, wire.EventJoinError), 1)
			testutil.AssertEqual(t, "not joined", countFrames(t, conn, wire.EventMatchJoined), 0)
		})
	}
}

func TestCommandBeforeJoin(t *testing.T) {
	cm, _ := newTestManager(t)
	conn := &scriptConn{script: []*wire.Frame{
		frame(t, wire.EventGameCommand, map[string]string{"type": "SEARCH"}),
	}}

	cm.AcceptConnection(context.Background(), conn, "")

	errFrame := lastFrame(t, conn, wire.EventGameError)
	if errFrame == nil {
		t.Fatal("expected a gameError frame")
	}
	var p wire.GameErrorPayload
	if err := json.Unmarshal(errFrame.Payload, &p); err != nil {
		t.Fatalf("decoding error payload: %v", err)
	}
	testutil.AssertEqual(t, "message", p.Message, "join a match first")
}

func TestMalformedCommand(t *testing.T) {
	cm, _ := newTestManager(t)
	conn := &scriptConn{script: []*wire.Frame{
		frame(t, wire.EventJoinMatch, &wire.JoinMatchPayload{Name: "Alice"}),
		frame(t, wire.EventGameCommand, map[string]string{"type": "TELEPORT"}),
	}}

	cm.AcceptConnection(context.Background(), conn, "")

	testutil.AssertEqual(t, "error returned", countFrames(t, conn, wire.EventGameError), 1)
}

func TestUnknownEvent(t *testing.T) {
	cm, _ := newTestManager(t)
	conn := &scriptConn{script: []*wire.Frame{
		{Event: "timeTravel", Payload: json.RawMessage(`{}`)},
	}}

	cm.AcceptConnection(context.Background(), conn, "")

	testutil.AssertEqual(t, "error returned", countFrames(t, conn, wire.EventGameError), 1)
}

func TestResumeKeepsIdentity(t *testing.T) {
	cm, _ := newTestManager(t)

	first := &scriptConn{script: []*wire.Frame{
		frame(t, wire.EventJoinMatch, &wire.JoinMatchPayload{Name: "Alice"}),
	}}
	cm.AcceptConnection(context.Background(), first, "")

	var sess wire.SessionPayload
	if err := json.Unmarshal(lastFrame(t, first, wire.EventSession).Payload, &sess); err != nil {
		t.Fatalf("decoding session payload: %v", err)
	}

	second := &scriptConn{}
	cm.AcceptConnection(context.Background(), second, sess.SessionID)

	var resumed wire.SessionPayload
	if err := json.Unmarshal(lastFrame(t, second, wire.EventSession).Payload, &resumed); err != nil {
		t.Fatalf("decoding session payload: %v", err)
	}
	testutil.AssertEqual(t, "player id stable", resumed.PlayerID, sess.PlayerID)
	testutil.AssertEqual(t, "token stable", resumed.SessionID, sess.SessionID)
}

func TestExpiredTokenGetsFreshSession(t *testing.T) {
	cm, mock := newTestManager(t)

	first := &scriptConn{}
	cm.AcceptConnection(context.Background(), first, "")
	var sess wire.SessionPayload
	if err := json.Unmarshal(lastFrame(t, first, wire.EventSession).Payload, &sess); err != nil {
		t.Fatalf("decoding session payload: %v", err)
	}

	mock.Add(31 * time.Minute)

	second := &scriptConn{}
	cm.AcceptConnection(context.Background(), second, sess.SessionID)

	var fresh wire.SessionPayload
	if err := json.Unmarshal(lastFrame(t, second, wire.EventSession).Payload, &fresh); err != nil {
		t.Fatalf("decoding session payload: %v", err)
	}
	if fresh.PlayerID == sess.PlayerID {
		t.Fatal("expected a new identity after expiry")
	}
	if fresh.SessionID == sess.SessionID {
		t.Fatal("expected a new token after expiry")
	}
}

func TestDisconnectWhileFormingLeavesMatch(t *testing.T) {
	cm, _ := newTestManager(t)

	conn := &scriptConn{script: []*wire.Frame{
		frame(t, wire.EventJoinMatch, &wire.JoinMatchPayload{Name: "Alice"}),
	}}
	cm.AcceptConnection(context.Background(), conn, "")

	var sess wire.SessionPayload
	if err := json.Unmarshal(lastFrame(t, conn, wire.EventSession).Payload, &sess); err != nil {
		t.Fatalf("decoding session payload: %v", err)
	}
	if cm.matches.MatchFor(sess.PlayerID) != nil {
		t.Fatal("expected the forming match to drop the player on disconnect")
	}
}
