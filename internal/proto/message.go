package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin     = "join"
	InboundTypeMessage  = "message"
	InboundTypeGetRooms = "get_rooms"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// JoinData requests to join a room under a username. Room is optional;
// the server falls back to its default room.
type JoinData struct {
	Username string `json:"username"`
	Room     string `json:"room,omitempty"`
}

// MessageData is a chat message from the client.
type MessageData struct {
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// StatusData greets a client right after it connects.
type StatusData struct {
	Msg string `json:"msg"`
}

// EventMessage carries a chat message (system, user or ai authored).
type EventMessage struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
}

// EventUserJoined notifies room members that a user joined.
type EventUserJoined struct {
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

// EventUserLeft notifies room members that a user left.
type EventUserLeft struct {
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

// EventRoomInfo is the room snapshot sent to a client upon joining.
type EventRoomInfo struct {
	Room      string   `json:"room"`
	Users     []string `json:"users"`
	UserCount int      `json:"user_count"`
}

// RoomSummary is one entry of the rooms listing. The REST /rooms
// endpoint returns the same shape.
type RoomSummary struct {
	UserCount int      `json:"user_count"`
	Users     []string `json:"users"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
