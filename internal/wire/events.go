package wire

// Event names shared with the client. These form the wire contract; renaming
// one is a breaking protocol change.
const (
	// Client to server.
	EventJoinMatch   = "joinMatch"
	EventGameCommand = "gameCommand"

	// Server to client.
	EventSession      = "session"
	EventMatchJoined  = "matchJoined"
	EventJoinError    = "joinError"
	EventRoomUpdate   = "roomUpdate"
	EventSearchStart  = "searchStart"
	EventSearchEnd    = "searchEnd"
	EventBattleStart  = "battleStart"
	EventBattleEnd    = "battleEnd"
	EventChatMessage  = "chatMessage"
	EventPlayerJoined = "playerJoined"
	EventPlayerLeft   = "playerLeft"
	EventGracePeriod  = "gracePeriod"
	EventMatchEnd     = "matchEnd"
	EventGameError    = "gameError"
)

// Reasons carried by playerLeft payloads.
const (
	LeaveReasonMoved        = "moved"
	LeaveReasonEscaped      = "escaped"
	LeaveReasonKilled       = "killed"
	LeaveReasonDisconnected = "disconnected"
)
