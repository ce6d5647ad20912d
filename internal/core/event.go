package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventIdentityBound confirms that the hello identity was accepted.
	EventIdentityBound EventKind = iota
	// EventRoomJoined confirms that the client joined a room scope.
	EventRoomJoined
	// EventGlobalMessage carries a message from the global stream.
	EventGlobalMessage
	// EventRoomMessage carries a message sent to a room.
	EventRoomMessage
	// EventError notifies the originating client about a rejected command.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventIdentityBound:
		return "identity_bound"
	case EventRoomJoined:
		return "room_joined"
	case EventGlobalMessage:
		return "global_message"
	case EventRoomMessage:
		return "room_message"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Room    int64
	User    string
	Message Message
	Error   *CoreError
}
