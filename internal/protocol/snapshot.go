package protocol

import (
	"time"

	"github.com/dkeye/WatchParty/internal/domain"
)

// UserView is a member as other clients see it.
type UserView struct {
	domain.User
	IsModerator bool                `json:"isModerator"`
	Grants      []domain.Capability `json:"grants"`
}

// Snapshot is the full room state handed to a joining connection.
type Snapshot struct {
	RoomID      domain.RoomID      `json:"roomId"`
	CreatedAtMs int64              `json:"createdAtMs"`
	Users       []UserView         `json:"users"`
	ModeratorID domain.UserID      `json:"moderatorId"`
	SharerID    domain.UserID      `json:"sharerId,omitempty"`
	Video       *domain.VideoState `json:"video,omitempty"`
	Messages    []domain.Message   `json:"messages"`
}

func ViewOf(r *domain.Room, m *domain.Member) UserView {
	return UserView{
		User:        *m.User,
		IsModerator: r.IsModerator(m.User.ID),
		Grants:      m.Grants(),
	}
}

// NewSnapshot captures the room at now. A playing video reports its extrapolated position.
func NewSnapshot(r *domain.Room, now time.Time) Snapshot {
	members := r.Members()
	users := make([]UserView, 0, len(members))
	for _, m := range members {
		users = append(users, ViewOf(r, m))
	}
	snap := Snapshot{
		RoomID:      r.ID,
		CreatedAtMs: r.CreatedAt.UnixMilli(),
		Users:       users,
		ModeratorID: r.Moderator,
		SharerID:    r.Sharer,
		Messages:    r.History(),
	}
	if !r.Video.IsZero() {
		v := r.Video.At(now)
		snap.Video = &v
	}
	return snap
}
