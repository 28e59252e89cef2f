package wire

import "encoding/json"

// Frame is one message on the transport: a named event plus its JSON payload.
// Inbound frames keep the payload raw so each event can decode its own shape.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// GameMsg is one outbound message addressed through a courier. ID is the
// courier address for the current layer; each layer clones the message before
// rewriting it, so a message is owned by its sender at emit time.
type GameMsg struct {
	Event   string
	ID      string
	Payload any
}

// Clone returns a copy safe for the next layer to readdress.
func (m *GameMsg) Clone() *GameMsg {
	c := *m
	return &c
}

// Server payload types. Every payload carries a millisecond timestamp.

type SessionPayload struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
	Timestamp int64  `json:"timestamp"`
}

type MatchJoinedPayload struct {
	MatchID     string `json:"matchId"`
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Timestamp   int64  `json:"timestamp"`
}

type JoinErrorPayload struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type RoomUpdatePayload struct {
	RoomName    string            `json:"roomName"`
	Description string            `json:"description"`
	Players     []string          `json:"players"`
	Exits       map[string]string `json:"exits"`
	Weapon      *string           `json:"weapon"`
	Timestamp   int64             `json:"timestamp"`
}

type SearchStartPayload struct {
	PlayerName string `json:"playerName"`
	IsYou      bool   `json:"isYou"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

type SearchEndPayload struct {
	PlayerName  string `json:"playerName"`
	IsYou       bool   `json:"isYou"`
	WeaponFound bool   `json:"weaponFound"`
	Weapon      string `json:"weapon,omitempty"`
	WeaponDmg   int    `json:"weaponDmg,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

type BattleStartPayload struct {
	BattleID      string   `json:"battleId"`
	Attacker      string   `json:"attacker"`
	Participants  []string `json:"participants"`
	RoomName      string   `json:"roomName"`
	IsParticipant bool     `json:"isParticipant"`
	IsAttacker    bool     `json:"isAttacker,omitempty"`
	TimeLimitMs   int64    `json:"timeLimitMs"`
	Defender      string   `json:"defender,omitempty"`
	Timestamp     int64    `json:"timestamp"`
}

type BattleEndPayload struct {
	BattleID    string   `json:"battleId"`
	Winner      string   `json:"winner"`
	Escaped     []string `json:"escaped"`
	Killed      []string `json:"killed"`
	Description string   `json:"description"`
	Timestamp   int64    `json:"timestamp"`
}

type ChatMessagePayload struct {
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

type PlayerJoinedPayload struct {
	PlayerName string `json:"playerName"`
	Timestamp  int64  `json:"timestamp"`
}

type PlayerLeftPayload struct {
	PlayerName string `json:"playerName"`
	Reason     string `json:"reason"`
	Timestamp  int64  `json:"timestamp"`
}

type GracePeriodPayload struct {
	Active        bool   `json:"active"`
	TimeRemaining int64  `json:"timeRemaining"`
	Message       string `json:"message"`
	Timestamp     int64  `json:"timestamp"`
}

type MatchEndPayload struct {
	Winner    string `json:"winner"`
	WinnerID  string `json:"winnerId"`
	IsWinner  bool   `json:"isWinner"`
	Timestamp int64  `json:"timestamp"`
}

type GameErrorPayload struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Client payload types.

type JoinMatchPayload struct {
	Name      string `json:"name"`
	SessionID string `json:"sessionId,omitempty"`
}
