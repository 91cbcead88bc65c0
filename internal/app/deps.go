package app

import (
	"fmt"
	"time"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
)

// Deps are the collaborators shared by the room services.
// Every service method runs on the dispatcher goroutine.
type Deps struct {
	Rooms    core.RoomStore
	Registry *Registry
	Out      core.Fanout
	Clock    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

// roomOf resolves the room the user is currently in.
func (d Deps) roomOf(id domain.UserID) (*domain.Room, error) {
	roomID, ok := d.Registry.RoomOf(core.SessionOf(id))
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	room, err := d.Rooms.Get(roomID)
	if err != nil {
		return nil, err
	}
	if !room.Has(id) {
		return nil, fmt.Errorf("%w: membership out of sync", domain.ErrNotInRoom)
	}
	return room, nil
}

// requireModerator resolves the actor's room and checks moderator authority.
func (d Deps) requireModerator(actor domain.UserID) (*domain.Room, error) {
	room, err := d.roomOf(actor)
	if err != nil {
		return nil, err
	}
	if !room.IsModerator(actor) {
		return nil, fmt.Errorf("%w: moderator only", domain.ErrPermissionDenied)
	}
	return room, nil
}
