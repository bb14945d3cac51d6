package core

import "time"

// Session binds a live connection to its username and current room.
// One session per connection; replaced on room switch, deleted on
// disconnect.
type Session struct {
	ConnID   string
	Username string
	Room     string
	JoinedAt time.Time
}

// sessionRegistry maps connection IDs to sessions. It has no locking of
// its own; the hub serializes all access.
type sessionRegistry struct {
	sessions map[string]Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]Session)}
}

func (r *sessionRegistry) upsert(s Session) {
	r.sessions[s.ConnID] = s
}

// remove deletes the session for id and returns it, if any.
func (r *sessionRegistry) remove(id string) (Session, bool) {
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

func (r *sessionRegistry) lookup(id string) (Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}
