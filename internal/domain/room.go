package domain

import "time"

// RoomID is a short opaque token, unique among live rooms.
type RoomID string

// Room is the state of one watch session. It is not safe for concurrent use;
// the dispatcher owns every room.
type Room struct {
	ID        RoomID
	CreatedAt time.Time
	Moderator UserID
	Sharer    UserID
	Video     VideoState

	order        []UserID
	members      map[UserID]*Member
	log          []Message
	historyLimit int
}

// NewRoom creates an empty room. historyLimit <= 0 keeps the whole chat log.
func NewRoom(id RoomID, createdAt time.Time, historyLimit int) *Room {
	return &Room{
		ID:           id,
		CreatedAt:    createdAt,
		members:      make(map[UserID]*Member),
		historyLimit: historyLimit,
	}
}

func (r *Room) Len() int    { return len(r.order) }
func (r *Room) Empty() bool { return len(r.order) == 0 }

func (r *Room) Has(id UserID) bool {
	_, ok := r.members[id]
	return ok
}

func (r *Room) Member(id UserID) (*Member, bool) {
	m, ok := r.members[id]
	return m, ok
}

// Members returns members in join order.
func (r *Room) Members() []*Member {
	out := make([]*Member, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.members[id])
	}
	return out
}

// Add registers a member. It reports false if the user is already present.
func (r *Room) Add(m *Member) bool {
	if r.Has(m.User.ID) {
		return false
	}
	r.members[m.User.ID] = m
	r.order = append(r.order, m.User.ID)
	return true
}

// Remove drops a member together with its grants.
func (r *Room) Remove(id UserID) (*Member, bool) {
	m, ok := r.members[id]
	if !ok {
		return nil, false
	}
	delete(r.members, id)
	for i, uid := range r.order {
		if uid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return m, true
}

// Successor is the earliest joined member, or "" for an empty room.
func (r *Room) Successor() UserID {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

func (r *Room) IsModerator(id UserID) bool { return id != "" && r.Moderator == id }

// Can reports whether the user holds the capability. The moderator holds all of them.
func (r *Room) Can(id UserID, c Capability) bool {
	if r.IsModerator(id) {
		return true
	}
	m, ok := r.members[id]
	return ok && m.Has(c)
}

// Grant reports false when the user is absent or already held the capability.
func (r *Room) Grant(id UserID, c Capability) bool {
	m, ok := r.members[id]
	if !ok || m.Has(c) {
		return false
	}
	m.grants[c] = struct{}{}
	return true
}

func (r *Room) Revoke(id UserID, c Capability) bool {
	m, ok := r.members[id]
	if !ok || !m.Has(c) {
		return false
	}
	delete(m.grants, c)
	return true
}

func (r *Room) AppendMessage(msg Message) {
	r.log = append(r.log, msg)
	if r.historyLimit > 0 && len(r.log) > r.historyLimit {
		r.log = append(r.log[:0:0], r.log[len(r.log)-r.historyLimit:]...)
	}
}

func (r *Room) History() []Message {
	out := make([]Message, len(r.log))
	copy(out, r.log)
	return out
}
