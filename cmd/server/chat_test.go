package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/roomchat/internal/proto"
)

func TestWebsocketURL(t *testing.T) {
	got, err := websocketURL("http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", got)

	got, err = websocketURL("https://chat.example.com/base/")
	require.NoError(t, err)
	assert.Equal(t, "wss://chat.example.com/base/ws", got)
}

func TestParseLine(t *testing.T) {
	var out bytes.Buffer
	s := &chatSession{self: "alice", out: &out}

	typ, _ := s.parseLine("   ")
	assert.Empty(t, typ)

	typ, data := s.parseLine("hello all")
	assert.Equal(t, proto.InboundTypeMsg, typ)
	assert.Equal(t, proto.MsgData{Text: "hello all"}, data)

	typ, data = s.parseLine("/join 4 pw")
	assert.Equal(t, proto.InboundTypeJoin, typ)
	assert.Equal(t, proto.JoinData{RoomID: 4, Password: "pw"}, data)

	typ, data = s.parseLine("in the room")
	assert.Equal(t, proto.InboundTypeRoomMsg, typ)
	assert.Equal(t, proto.RoomMsgData{RoomID: 4, Text: "in the room"}, data)

	typ, _ = s.parseLine("/global")
	assert.Empty(t, typ)
	typ, _ = s.parseLine("back outside")
	assert.Equal(t, proto.InboundTypeMsg, typ)

	typ, _ = s.parseLine("/join abc")
	assert.Empty(t, typ)
	assert.Contains(t, out.String(), "bad room id")
}

func TestRenderSkipsOwnRoomEcho(t *testing.T) {
	var out bytes.Buffer
	s := &chatSession{self: "alice", out: &out}

	frame := func(event string, data any) inboundFrame {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		return inboundFrame{Type: proto.OutboundTypeEvent, Event: event, Data: raw}
	}

	s.render(frame(proto.EventNameRoomMessage, proto.EventMessage{RoomID: 2, From: "alice", Body: "mine"}))
	assert.Empty(t, out.String())

	s.render(frame(proto.EventNameRoomMessage, proto.EventMessage{RoomID: 2, From: "bob", Body: "theirs"}))
	assert.Equal(t, "[room 2] bob: theirs\n", out.String())

	out.Reset()
	s.render(frame(proto.EventNameMessage, proto.EventMessage{From: "carol", Body: "hey"}))
	assert.Equal(t, "[global] carol: hey\n", out.String())

	out.Reset()
	s.render(inboundFrame{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "room_full", Msg: "room is full"}})
	assert.Equal(t, "! room_full: room is full\n", out.String())
}
