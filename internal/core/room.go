package core

// roomDirectory maps room names to member connection IDs. Rooms are
// created lazily and never deleted; an empty member set is valid.
// Like the session registry it relies on the hub for serialization.
type roomDirectory struct {
	rooms map[string]map[string]struct{}
}

func newRoomDirectory(seed []string) *roomDirectory {
	d := &roomDirectory{rooms: make(map[string]map[string]struct{})}
	for _, name := range seed {
		d.rooms[name] = make(map[string]struct{})
	}
	return d
}

// addMember inserts id into the room, creating the room if needed.
// Returns true if newly added.
func (d *roomDirectory) addMember(room, id string) bool {
	members, ok := d.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		d.rooms[room] = members
	}
	if _, exists := members[id]; exists {
		return false
	}
	members[id] = struct{}{}
	return true
}

// removeMember deletes id from the room. The room itself stays, even
// when its member set becomes empty.
func (d *roomDirectory) removeMember(room, id string) bool {
	members, ok := d.rooms[room]
	if !ok {
		return false
	}
	if _, exists := members[id]; !exists {
		return false
	}
	delete(members, id)
	return true
}

// membersOf returns the member set of a room. Callers must not mutate
// it and must hold the hub lock while iterating.
func (d *roomDirectory) membersOf(room string) map[string]struct{} {
	return d.rooms[room]
}
