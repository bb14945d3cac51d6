package http

import (
	"encoding/json"
	"time"

	"github.com/ollamachat/chathub/internal/core"
	"github.com/ollamachat/chathub/internal/proto"
)

// dispatchInbound routes one client frame into the hub. Domain errors
// (bad username, empty message, not joined) are emitted by the hub as
// error events; only malformed frames come back as protocol errors.
func (h *WSHandler) dispatchInbound(client *core.Client, inbound proto.Inbound) (*proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, err
		}
		h.hub.Join(client.ID, join.Username, join.Room)
		return nil, nil
	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, err
		}
		h.hub.HandleMessage(client.ID, msg.Text)
		return nil, nil
	case proto.InboundTypeGetRooms:
		h.hub.SendRooms(client.ID)
		return nil, nil
	default:
		return &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventStatus:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "status",
			Data:  proto.StatusData{Msg: "Connected to chat server"},
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "message",
			Data: proto.EventMessage{
				Username:  event.Message.Username,
				Text:      event.Message.Text,
				Timestamp: event.Message.CreatedAt.Format(time.RFC3339),
				Kind:      string(event.Message.Kind),
			},
		}
	case core.EventUserJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "user_joined",
			Data: proto.EventUserJoined{
				Username:  event.User,
				Timestamp: event.Time.Format(time.RFC3339),
			},
		}
	case core.EventUserLeft:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "user_left",
			Data: proto.EventUserLeft{
				Username:  event.User,
				Timestamp: event.Time.Format(time.RFC3339),
			},
		}
	case core.EventRoomInfo:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "room_info",
			Data: proto.EventRoomInfo{
				Room:      event.Room,
				Users:     event.Users,
				UserCount: len(event.Users),
			},
		}
	case core.EventRoomsList:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "rooms_list",
			Data:  roomsToProto(event.Rooms),
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func roomsToProto(rooms map[string]core.RoomSummary) map[string]proto.RoomSummary {
	out := make(map[string]proto.RoomSummary, len(rooms))
	for name, summary := range rooms {
		out[name] = proto.RoomSummary{
			UserCount: summary.UserCount,
			Users:     summary.Users,
		}
	}
	return out
}
