package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandHello binds an authenticated identity to the connection.
	CommandHello CommandKind = iota
	// CommandSendGlobalMessage delivers a message to every other bound connection.
	CommandSendGlobalMessage
	// CommandJoinRoom validates a room join and adds the connection to the room scope.
	CommandJoinRoom
	// CommandSendRoomMessage delivers a message to every connection in a room scope.
	CommandSendRoomMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Identity string // CommandHello
	Room     int64  // CommandJoinRoom, CommandSendRoomMessage
	Password string // CommandJoinRoom
	Text     string // message commands
}
