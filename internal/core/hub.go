package core

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// AIDispatcher runs completion jobs in the background. Submit must
// return without blocking; results re-enter the hub through the
// broadcast path, never through the submitting call.
type AIDispatcher interface {
	Submit(room, prompt string)
}

// Hub coordinates sessions, room membership and message fan-out.
//
// All mutations (join, disconnect, room switch) are applied as one
// atomic step under a single lock covering both the session registry
// and the room directory, and every broadcast delivers to a consistent
// member snapshot before the next mutation is admitted. Event sends
// are non-blocking, so the lock is never held across a blocking
// operation; a member whose buffer is full has that event dropped.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	sessions *sessionRegistry
	rooms    *roomDirectory

	defaultRoom string
	ai          AIDispatcher
	log         *zerolog.Logger
}

// NewHub creates a hub with the given default room and pre-seeded room
// names. Seeded rooms exist from the start so they show up in listings
// even while empty.
func NewHub(defaultRoom string, seedRooms []string, logger *zerolog.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		sessions:    newSessionRegistry(),
		rooms:       newRoomDirectory(seedRooms),
		defaultRoom: defaultRoom,
		log:         logger,
	}
}

// SetAIDispatcher attaches the completion dispatcher. Called once
// during wiring; a hub without a dispatcher logs and drops AI jobs.
func (h *Hub) SetAIDispatcher(d AIDispatcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ai = d
}

// Register tracks a connected client and greets it. The client has no
// session until it joins a room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID] = c
	h.send(c, &Event{Kind: EventStatus, Time: time.Now()})
	h.log.Debug().Str("conn_id", c.ID).Msg("client connected")
}

// Join places the connection into a room, moving it out of its current
// room first if it has one. The whole transition is one atomic step:
// a connection is never observed in two rooms, or in none while its
// session says otherwise.
func (h *Hub) Join(connID, username, room string) {
	username = strings.TrimSpace(username)
	room = strings.TrimSpace(room)
	if room == "" {
		room = h.defaultRoom
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		h.log.Warn().Str("conn_id", connID).Msg("join from unknown connection")
		return
	}

	if username == "" {
		h.send(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeInvalidInput, "Username is required"),
		})
		return
	}

	now := time.Now()

	// Leaving the old room and entering the new one happens under the
	// same lock acquisition, so the one-room-per-connection invariant
	// holds at every observable instant.
	if prev, exists := h.sessions.lookup(connID); exists {
		h.rooms.removeMember(prev.Room, connID)
		if prev.Room != room {
			h.broadcast(prev.Room, &Event{
				Kind: EventUserLeft,
				Room: prev.Room,
				User: prev.Username,
				Time: now,
			}, connID)
			h.log.Info().
				Str("username", username).
				Str("from", prev.Room).
				Str("to", room).
				Msg("user switched room")
		}
	}

	h.sessions.upsert(Session{
		ConnID:   connID,
		Username: username,
		Room:     room,
		JoinedAt: now,
	})
	h.rooms.addMember(room, connID)

	h.send(c, &Event{
		Kind: EventMessage,
		Room: room,
		Message: Message{
			Username:  "System",
			Text:      fmt.Sprintf("Welcome to %s room, %s!", room, username),
			Kind:      KindSystem,
			CreatedAt: now,
		},
	})
	h.broadcast(room, &Event{
		Kind: EventUserJoined,
		Room: room,
		User: username,
		Time: now,
	}, connID)
	h.send(c, &Event{
		Kind:  EventRoomInfo,
		Room:  room,
		Users: h.usersIn(room),
	})

	h.log.Info().Str("username", username).Str("room", room).Msg("user joined room")
}

// Disconnect removes all state for the connection. Safe to call for
// connections that never joined, and idempotent.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, connID)

	s, ok := h.sessions.remove(connID)
	if !ok {
		return
	}
	h.rooms.removeMember(s.Room, connID)

	h.broadcast(s.Room, &Event{
		Kind: EventUserLeft,
		Room: s.Room,
		User: s.Username,
		Time: time.Now(),
	}, connID)

	h.log.Info().Str("username", s.Username).Str("room", s.Room).Msg("user left room")
}

// HandleMessage validates and broadcasts a chat message from connID to
// every member of its room, sender included. Messages containing the
// AI trigger additionally submit a completion job for the room after
// the user message has been delivered.
func (h *Hub) HandleMessage(connID, rawText string) {
	text := strings.TrimSpace(rawText)

	h.mu.Lock()

	c, connected := h.clients[connID]
	s, joined := h.sessions.lookup(connID)
	if !joined {
		if connected {
			h.send(c, &Event{
				Kind:  EventError,
				Error: coreError(ErrCodeNotJoined, "You must join a room first"),
			})
		}
		h.mu.Unlock()
		return
	}
	if text == "" {
		h.send(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeEmptyMessage, "Message cannot be empty"),
		})
		h.mu.Unlock()
		return
	}

	h.broadcast(s.Room, &Event{
		Kind: EventMessage,
		Room: s.Room,
		Message: Message{
			Username:  s.Username,
			Text:      text,
			Kind:      KindUser,
			CreatedAt: time.Now(),
		},
	}, "")

	room := s.Room
	dispatcher := h.ai
	h.mu.Unlock()

	prompt, triggered := aiPrompt(text)
	if !triggered {
		return
	}
	if dispatcher == nil {
		h.log.Warn().Str("room", room).Msg("ai trigger ignored: no dispatcher configured")
		return
	}
	dispatcher.Submit(room, prompt)
}

// PostAIMessage injects a completion result (or its fallback) into the
// current membership of the room. The member set is read live at
// delivery time; it may have changed since the job was submitted.
func (h *Hub) PostAIMessage(room, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.broadcast(room, &Event{
		Kind: EventMessage,
		Room: room,
		Message: Message{
			Username:  AIUsername,
			Text:      text,
			Kind:      KindAI,
			CreatedAt: time.Now(),
		},
	}, "")
}

// SendRooms delivers the room directory snapshot to one client.
func (h *Hub) SendRooms(connID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	h.send(c, &Event{Kind: EventRoomsList, Rooms: h.snapshot()})
}

// Rooms returns a point-in-time snapshot of every room's membership,
// shared by the rooms_list event and the REST endpoint.
func (h *Hub) Rooms() map[string]RoomSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot()
}

func (h *Hub) snapshot() map[string]RoomSummary {
	out := make(map[string]RoomSummary, len(h.rooms.rooms))
	for name := range h.rooms.rooms {
		users := h.usersIn(name)
		out[name] = RoomSummary{UserCount: len(users), Users: users}
	}
	return out
}

// usersIn resolves the member set of a room to usernames. Callers hold
// the hub lock.
func (h *Hub) usersIn(room string) []string {
	members := h.rooms.membersOf(room)
	users := make([]string, 0, len(members))
	for id := range members {
		if s, ok := h.sessions.lookup(id); ok {
			users = append(users, s.Username)
		}
	}
	return users
}

// broadcast sends an event to every member of the room except
// excludeID (empty string excludes nobody). Callers hold the hub lock,
// so the member set iterated here is the consistent snapshot the event
// belongs to.
func (h *Hub) broadcast(room string, ev *Event, excludeID string) {
	for id := range h.rooms.membersOf(room) {
		if id == excludeID {
			continue
		}
		c, ok := h.clients[id]
		if !ok {
			// Membership without a live client can only be a window
			// mid-disconnect; skip rather than fail the broadcast.
			continue
		}
		h.send(c, ev)
	}
}

// send delivers an event without blocking. A full buffer means the
// member is too slow; the event is dropped for that member only.
func (h *Hub) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		h.log.Warn().Str("conn_id", c.ID).Int("kind", int(ev.Kind)).Msg("event dropped: slow consumer")
	}
}

// aiPrompt reports whether text addresses the AI and extracts the
// prompt: the text minus the first case-insensitive trigger
// occurrence, trimmed. A message that is nothing but the trigger falls
// back to the full original text.
func aiPrompt(text string) (string, bool) {
	start, end := findTrigger(text)
	if start < 0 {
		return "", false
	}
	prompt := strings.TrimSpace(text[:start] + text[end:])
	if prompt == "" {
		prompt = text
	}
	return prompt, true
}

// findTrigger locates the first case-insensitive "@ai" occurrence and
// returns its byte bounds in the original string. Matching runs
// rune-wise on the original text; lowercasing a copy and reusing its
// indexes is unsafe because case mappings can change byte length.
func findTrigger(text string) (int, int) {
	for i := 0; i < len(text); i++ {
		if text[i] != '@' {
			continue
		}
		j := i + 1
		matched := true
		for _, want := range []rune{'a', 'i'} {
			r, size := utf8.DecodeRuneInString(text[j:])
			if size == 0 || unicode.ToLower(r) != want {
				matched = false
				break
			}
			j += size
		}
		if matched {
			return i, j
		}
	}
	return -1, -1
}
