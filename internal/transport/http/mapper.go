package http

import (
	"encoding/json"

	"github.com/vovakirdan/roomchat/internal/auth"
	"github.com/vovakirdan/roomchat/internal/core"
	"github.com/vovakirdan/roomchat/internal/proto"
)

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

// inboundToCommand decodes a frame into a core command. A non-nil *proto.Error
// is sent back to the client and the connection stays open.
func inboundToCommand(authService *auth.Service, inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeHello:
		var hello proto.HelloData
		if err := json.Unmarshal(inbound.Data, &hello); err != nil {
			return nil, badRequest("invalid hello payload")
		}
		if hello.Protocol != 0 && hello.Protocol != proto.ProtocolVersion {
			return nil, &proto.Error{Code: core.ErrCodeUnsupportedVersion, Msg: "unsupported protocol version"}
		}
		if hello.Token == "" {
			return nil, &proto.Error{Code: core.ErrCodeUnauthorized, Msg: "token is required"}
		}
		claims, err := authService.ValidateToken(hello.Token)
		if err != nil {
			return nil, &proto.Error{Code: core.ErrCodeUnauthorized, Msg: "invalid token"}
		}
		return &core.Command{
			Kind:     core.CommandHello,
			Identity: claims.Username,
		}, nil
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, badRequest("invalid msg payload")
		}
		return &core.Command{
			Kind: core.CommandSendGlobalMessage,
			Text: msg.Text,
		}, nil
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, badRequest("invalid join payload")
		}
		if join.RoomID <= 0 {
			return nil, badRequest("room_id is required")
		}
		return &core.Command{
			Kind:     core.CommandJoinRoom,
			Room:     join.RoomID,
			Password: join.Password,
		}, nil
	case proto.InboundTypeRoomMsg:
		var msg proto.RoomMsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, badRequest("invalid room_msg payload")
		}
		if msg.RoomID <= 0 {
			return nil, badRequest("room_id is required")
		}
		return &core.Command{
			Kind: core.CommandSendRoomMessage,
			Room: msg.RoomID,
			Text: msg.Text,
		}, nil
	default:
		return nil, badRequest("unknown message type")
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventIdentityBound:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameHello,
			Data:  proto.EventHelloData{User: event.User, Protocol: proto.ProtocolVersion},
		}
	case core.EventRoomJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameJoined,
			Data:  proto.EventJoinedData{RoomID: event.Room, User: event.User},
		}
	case core.EventGlobalMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameMessage,
			Data:  eventMessage(event.Message),
		}
	case core.EventRoomMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameRoomMessage,
			Data:  eventMessage(event.Message),
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: core.ErrCodeServerError, Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventMessage(msg core.Message) proto.EventMessage {
	return proto.EventMessage{
		RoomID: msg.Room,
		Body:   msg.Text,
		From:   msg.From,
		TS:     msg.CreatedAt.UnixMilli(),
	}
}
