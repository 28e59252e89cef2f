package wire

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// CommandType enumerates the inbound game commands.
type CommandType int

const (
	CommandMove CommandType = iota
	CommandSearch
	CommandAttack
	CommandRespond
	CommandChat
)

func (t CommandType) String() string {
	switch t {
	case CommandMove:
		return "MOVE"
	case CommandSearch:
		return "SEARCH"
	case CommandAttack:
		return "ATTACK"
	case CommandRespond:
		return "RESPOND"
	case CommandChat:
		return "CHAT"
	default:
		return fmt.Sprintf("CommandType(%d)", int(t))
	}
}

// Battle decisions a client may send in a RESPOND command.
const (
	DecisionAttack = "ATTACK"
	DecisionEscape = "ESCAPE"
)

// Command is the validated form of a gameCommand payload. Only the fields for
// the command's type are populated.
type Command struct {
	Type      CommandType
	Direction string // MOVE
	TargetID  string // ATTACK: target player display name
	BattleID  string // RESPOND
	Decision  string // RESPOND
	Message   string // CHAT
}

// ValidationError is a client-facing rejection of an inbound event. It never
// carries internal state.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

var (
	playerNamePattern = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)
	directions        = map[string]bool{"north": true, "south": true, "east": true, "west": true}
)

const (
	minNameLen = 2
	maxNameLen = 20
	maxChatLen = 500
)

// ValidatePlayerName checks a joinMatch display name against the wire contract.
func ValidatePlayerName(name string) error {
	if len(name) < minNameLen || len(name) > maxNameLen {
		return NewValidationError("name must be between %d and %d characters", minNameLen, maxNameLen)
	}
	if !playerNamePattern.MatchString(name) {
		return NewValidationError("name may only contain letters, numbers, spaces, underscores, and hyphens")
	}
	return nil
}

type rawCommand struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
	TargetID  string `json:"targetId"`
	BattleID  string `json:"battleId"`
	Decision  string `json:"decision"`
	Message   string `json:"message"`
}

// ParseCommand decodes and validates a gameCommand payload. It is total: every
// input yields either a well-formed Command or a ValidationError.
func ParseCommand(payload json.RawMessage) (*Command, error) {
	var raw rawCommand
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, NewValidationError("malformed command payload")
	}

	switch raw.Type {
	case "MOVE":
		dir := strings.ToLower(raw.Direction)
		if !directions[dir] {
			return nil, NewValidationError("unknown direction %q", raw.Direction)
		}
		return &Command{Type: CommandMove, Direction: dir}, nil

	case "SEARCH":
		return &Command{Type: CommandSearch}, nil

	case "ATTACK":
		if raw.TargetID == "" {
			return nil, NewValidationError("attack requires a target")
		}
		return &Command{Type: CommandAttack, TargetID: raw.TargetID}, nil

	case "RESPOND":
		if raw.BattleID == "" {
			return nil, NewValidationError("respond requires a battleId")
		}
		if raw.Decision != DecisionAttack && raw.Decision != DecisionEscape {
			return nil, NewValidationError("decision must be ATTACK or ESCAPE")
		}
		return &Command{Type: CommandRespond, BattleID: raw.BattleID, Decision: raw.Decision}, nil

	case "CHAT":
		msg := strings.TrimSpace(raw.Message)
		if len(msg) == 0 {
			return nil, NewValidationError("chat message is empty")
		}
		// Length limit counts characters, not bytes.
		if utf8.RuneCountInString(msg) > maxChatLen {
			return nil, NewValidationError("chat message exceeds %d characters", maxChatLen)
		}
		return &Command{Type: CommandChat, Message: msg}, nil

	default:
		return nil, NewValidationError("unknown command type %q", raw.Type)
	}
}
