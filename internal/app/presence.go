package app

import (
	"errors"
	"fmt"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Presence owns join/leave, moderator succession and room cleanup.
type Presence struct {
	Deps
	Shared *SharedState
	// RequireExistingRoom makes join-room fail on unknown ids instead of creating the room.
	RequireExistingRoom bool
}

func NewPresence(d Deps, shared *SharedState, requireExisting bool) *Presence {
	return &Presence{Deps: d, Shared: shared, RequireExistingRoom: requireExisting}
}

// CreateRoom makes a room under a fresh id and joins the user to it.
func (p *Presence) CreateRoom(id domain.UserID, displayName string) (domain.RoomID, error) {
	room := p.Rooms.Create()
	if err := p.join(id, room, displayName); err != nil {
		if room.Empty() {
			p.Rooms.Delete(room.ID)
		}
		return "", err
	}
	return room.ID, nil
}

// Join admits the user into roomID, leaving any previous room first.
// Joining the room the user is already in only resends the snapshot.
func (p *Presence) Join(id domain.UserID, roomID domain.RoomID, displayName string) error {
	var (
		room    *domain.Room
		created bool
	)
	if p.RequireExistingRoom {
		r, err := p.Rooms.Get(roomID)
		if err != nil {
			return err
		}
		room = r
	} else {
		room, created = p.Rooms.CreateOrGet(roomID)
	}
	if err := p.join(id, room, displayName); err != nil {
		if created && room.Empty() {
			p.Rooms.Delete(room.ID)
		}
		return err
	}
	return nil
}

func (p *Presence) join(id domain.UserID, room *domain.Room, displayName string) error {
	sid := core.SessionOf(id)
	user, ok := p.Registry.User(sid)
	if !ok {
		return fmt.Errorf("no session for user %s", id)
	}

	if room.Has(id) {
		p.Out.ToUser(id, protocol.NewRoomJoined(p.view(room, id), protocol.NewSnapshot(room, p.now())))
		return nil
	}

	if displayName != "" {
		if err := user.SetDisplayName(displayName); err != nil {
			return err
		}
	}

	if prev, ok := p.Registry.RoomOf(sid); ok {
		if err := p.Leave(id); err != nil && !errors.Is(err, domain.ErrNotInRoom) {
			return err
		}
		log.Info().Str("module", "app.presence").Str("user_id", string(id)).Str("from_room", string(prev)).Msg("left previous room")
	}

	member := domain.NewMember(user, p.now())
	room.Add(member)
	if room.Moderator == "" {
		room.Moderator = id
	}
	p.Registry.UpdateRoom(sid, room.ID)
	log.Info().Str("module", "app.presence").Str("user_id", string(id)).Str("room_id", string(room.ID)).Int("users", room.Len()).Msg("joined")

	view := protocol.ViewOf(room, member)
	p.Out.ToUser(id, protocol.NewRoomJoined(view, protocol.NewSnapshot(room, p.now())))
	p.Out.ToRoom(room, id, protocol.NewUserJoined(view))
	return nil
}

// Leave removes the user from the current room and acknowledges with a left event.
func (p *Presence) Leave(id domain.UserID) error {
	sid := core.SessionOf(id)
	roomID, ok := p.Registry.RoomOf(sid)
	if !ok {
		return domain.ErrNotInRoom
	}
	p.Registry.RemoveRoom(sid)
	room, err := p.Rooms.Get(roomID)
	if err != nil {
		return nil
	}
	p.detach(room, id)
	p.Out.ToUser(id, protocol.NewLeft(roomID))
	return nil
}

// detach runs every consequence of a departure in one step: sharer release,
// grant removal, moderator succession and eager deletion of an empty room.
func (p *Presence) detach(room *domain.Room, id domain.UserID) {
	if p.Shared.releaseSharer(room, id) {
		p.Out.ToRoom(room, id, protocol.NewUserEvent(protocol.EvSharingStopped, id))
	}
	if _, ok := room.Remove(id); !ok {
		return
	}

	if room.Moderator == id {
		room.Moderator = room.Successor()
		if room.Moderator != "" {
			log.Info().Str("module", "app.presence").Str("room_id", string(room.ID)).Str("moderator", string(room.Moderator)).Msg("moderator handed off")
			p.Out.ToRoom(room, "", protocol.NewUserEvent(protocol.EvModeratorChanged, room.Moderator))
		}
	}

	if room.Empty() {
		p.Rooms.Delete(room.ID)
		return
	}
	log.Info().Str("module", "app.presence").Str("user_id", string(id)).Str("room_id", string(room.ID)).Int("users", room.Len()).Msg("left")
	p.Out.ToRoom(room, "", protocol.NewUserEvent(protocol.EvUserLeft, id))
}

// ElectModerator hands moderator authority from actor to target.
func (p *Presence) ElectModerator(actor, target domain.UserID) error {
	room, err := p.requireModerator(actor)
	if err != nil {
		return err
	}
	if !room.Has(target) {
		return fmt.Errorf("%w: %s is not in the room", domain.ErrInvalidTarget, target)
	}
	if room.Moderator == target {
		return nil
	}
	room.Moderator = target
	log.Info().Str("module", "app.presence").Str("room_id", string(room.ID)).Str("from", string(actor)).Str("to", string(target)).Msg("moderator elected")
	p.Out.ToRoom(room, "", protocol.NewUserEvent(protocol.EvModeratorChanged, target))
	return nil
}

// RemoveUser force-removes target on behalf of the moderator and closes its connection.
func (p *Presence) RemoveUser(actor, target domain.UserID) error {
	room, err := p.requireModerator(actor)
	if err != nil {
		return err
	}
	if target == actor {
		return fmt.Errorf("%w: cannot remove yourself", domain.ErrInvalidTarget)
	}
	if !room.Has(target) {
		return fmt.Errorf("%w: %s is not in the room", domain.ErrInvalidTarget, target)
	}
	p.Out.ToUser(target, protocol.NewRemoved(room.ID, actor))
	p.Registry.RemoveRoom(core.SessionOf(target))
	p.detach(room, target)
	p.Out.Disconnect(target)
	log.Info().Str("module", "app.presence").Str("room_id", string(room.ID)).Str("by", string(actor)).Str("user_id", string(target)).Msg("user removed")
	return nil
}

// Rename changes the display name and tells the room.
func (p *Presence) Rename(id domain.UserID, name string) error {
	user, ok := p.Registry.User(core.SessionOf(id))
	if !ok {
		return fmt.Errorf("no session for user %s", id)
	}
	if err := user.SetDisplayName(name); err != nil {
		return err
	}
	p.WhoAmI(id)
	if room, err := p.roomOf(id); err == nil {
		p.Out.ToRoom(room, id, protocol.NewUserUpdated(p.view(room, id)))
	}
	return nil
}

// SetMedia records a camera/microphone/screen flag and tells the room.
func (p *Presence) SetMedia(id domain.UserID, kind domain.MediaKind, enabled bool) error {
	user, ok := p.Registry.User(core.SessionOf(id))
	if !ok {
		return fmt.Errorf("no session for user %s", id)
	}
	if err := user.Media.Set(kind, enabled); err != nil {
		return err
	}
	if room, err := p.roomOf(id); err == nil {
		p.Out.ToRoom(room, id, protocol.NewMediaStateChanged(id, kind, enabled))
	}
	return nil
}

func (p *Presence) WhoAmI(id domain.UserID) {
	sid := core.SessionOf(id)
	user, ok := p.Registry.User(sid)
	if !ok {
		return
	}
	roomID, _ := p.Registry.RoomOf(sid)
	p.Out.ToUser(id, protocol.NewWhoAmI(*user, roomID))
}

func (p *Presence) view(room *domain.Room, id domain.UserID) protocol.UserView {
	m, _ := room.Member(id)
	return protocol.ViewOf(room, m)
}
