package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventStatus is sent to a client right after it connects.
	EventStatus EventKind = iota
	// EventMessage notifies clients about a chat message in a room.
	EventMessage
	// EventUserJoined notifies room members that a user joined.
	EventUserJoined
	// EventUserLeft notifies room members that a user left.
	EventUserLeft
	// EventRoomInfo delivers a room snapshot to a client upon joining.
	EventRoomInfo
	// EventRoomsList delivers the full room directory snapshot.
	EventRoomsList
	// EventError notifies a client about a domain error.
	EventError
)

// RoomSummary is a point-in-time view of a single room's membership.
type RoomSummary struct {
	UserCount int
	Users     []string
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Room    string
	User    string
	Time    time.Time
	Message Message
	Users   []string               // for EventRoomInfo
	Rooms   map[string]RoomSummary // for EventRoomsList
	Error   *CoreError
}
