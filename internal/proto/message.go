package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello   = "hello"
	InboundTypeMsg     = "msg"
	InboundTypeJoin    = "join"
	InboundTypeRoomMsg = "room_msg"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameHello       = "hello"
	EventNameJoined      = "joined"
	EventNameMessage     = "message"
	EventNameRoomMessage = "room_message"
)

// HelloData announces the identity carried by a login token.
type HelloData struct {
	Token    string `json:"token"`
	Protocol int    `json:"protocol,omitempty"`
}

// MsgData is a message for the global stream.
type MsgData struct {
	Text string `json:"text"`
}

// JoinData requests to join a room.
type JoinData struct {
	RoomID   int64  `json:"room_id"`
	Password string `json:"password,omitempty"`
}

// RoomMsgData is a message for one room.
type RoomMsgData struct {
	RoomID int64  `json:"room_id"`
	Text   string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventHelloData confirms the bound identity.
type EventHelloData struct {
	User     string `json:"user"`
	Protocol int    `json:"protocol"`
}

// EventJoinedData confirms a room join.
type EventJoinedData struct {
	RoomID int64  `json:"room_id"`
	User   string `json:"user"`
}

// EventMessage is a chat message. RoomID is omitted for the global stream.
type EventMessage struct {
	RoomID int64  `json:"room_id,omitempty"`
	Body   string `json:"body"`
	From   string `json:"from"`
	TS     int64  `json:"ts"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
