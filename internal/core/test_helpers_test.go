package core

import (
	"testing"
	"time"

	"github.com/ollamachat/chathub/internal/log"
)

func newTestHub() *Hub {
	return NewHub("general", []string{"general", "tech", "random"}, log.Nop())
}

// connect registers a client and drains its status greeting.
func connect(t *testing.T, h *Hub, id string) *Client {
	t.Helper()

	c := NewClient(id)
	h.Register(c)
	mustEvent(t, c.Events, EventStatus)
	return c
}

// join connects and joins in one step, draining the join effects.
func join(t *testing.T, h *Hub, id, username, room string) *Client {
	t.Helper()

	c := connect(t, h, id)
	h.Join(id, username, room)
	mustEvent(t, c.Events, EventMessage)  // welcome
	mustEvent(t, c.Events, EventRoomInfo) // snapshot
	return c
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent asserts that no event of the given kind is pending.
func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			return
		}
	}
}

// assertInvariants checks that every member of every room has a
// session naming that room, that no connection sits in two rooms, and
// that every session is backed by a membership entry.
func assertInvariants(t *testing.T, h *Hub) {
	t.Helper()

	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]string)
	for room, members := range h.rooms.rooms {
		for id := range members {
			if prev, ok := seen[id]; ok {
				t.Fatalf("connection %s in two rooms: %s and %s", id, prev, room)
			}
			seen[id] = room

			s, ok := h.sessions.lookup(id)
			if !ok {
				t.Fatalf("member %s of room %s has no session", id, room)
			}
			if s.Room != room {
				t.Fatalf("member %s of room %s has session room %s", id, room, s.Room)
			}
		}
	}

	for id, s := range h.sessions.sessions {
		if _, ok := h.rooms.rooms[s.Room][id]; !ok {
			t.Fatalf("session %s names room %s but is not a member", id, s.Room)
		}
	}
}
