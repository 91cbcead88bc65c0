package domain

import "time"

// Member represents a user's participation in one room.
// Grants live here so they disappear together with the membership.
type Member struct {
	User     *User
	JoinedAt time.Time
	grants   map[Capability]struct{}
}

func NewMember(user *User, joinedAt time.Time) *Member {
	return &Member{User: user, JoinedAt: joinedAt, grants: make(map[Capability]struct{})}
}

func (m *Member) Has(c Capability) bool {
	_, ok := m.grants[c]
	return ok
}

// Grants returns granted capabilities in a stable order.
func (m *Member) Grants() []Capability {
	out := make([]Capability, 0, len(m.grants))
	for _, c := range AllCapabilities {
		if m.Has(c) {
			out = append(out, c)
		}
	}
	return out
}
