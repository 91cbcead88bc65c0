package app

import (
	"fmt"

	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

// SharedState guards the room-wide screen sharer and video playback state.
type SharedState struct {
	Deps
	// GateScreenShare requires the screen-share capability to start sharing.
	GateScreenShare bool
}

func NewSharedState(d Deps, gateScreenShare bool) *SharedState {
	return &SharedState{Deps: d, GateScreenShare: gateScreenShare}
}

// StartSharing makes the user the room's sharer. A previous sharer is displaced
// and told so.
func (s *SharedState) StartSharing(id domain.UserID) error {
	room, err := s.roomOf(id)
	if err != nil {
		return err
	}
	if s.GateScreenShare && !room.Can(id, domain.CapScreenShare) {
		return fmt.Errorf("%w: screen-share not granted", domain.ErrPermissionDenied)
	}
	if room.Sharer == id {
		return nil
	}
	if prev := room.Sharer; prev != "" {
		s.releaseSharer(room, prev)
		s.Out.ToRoom(room, "", protocol.NewUserEvent(protocol.EvSharingStopped, prev))
	}
	room.Sharer = id
	if m, ok := room.Member(id); ok {
		m.User.Media.Screen = true
	}
	log.Info().Str("module", "app.shared").Str("room_id", string(room.ID)).Str("user_id", string(id)).Msg("sharing started")
	s.Out.ToRoom(room, id, protocol.NewUserEvent(protocol.EvSharingStarted, id))
	return nil
}

// StopSharing clears the sharer only if it is the caller.
func (s *SharedState) StopSharing(id domain.UserID) error {
	room, err := s.roomOf(id)
	if err != nil {
		return err
	}
	if !s.releaseSharer(room, id) {
		return nil
	}
	log.Info().Str("module", "app.shared").Str("room_id", string(room.ID)).Str("user_id", string(id)).Msg("sharing stopped")
	s.Out.ToRoom(room, id, protocol.NewUserEvent(protocol.EvSharingStopped, id))
	return nil
}

func (s *SharedState) releaseSharer(room *domain.Room, id domain.UserID) bool {
	if id == "" || room.Sharer != id {
		return false
	}
	room.Sharer = ""
	if m, ok := room.Member(id); ok {
		m.User.Media.Screen = false
	}
	return true
}

// UpdateVideo stores a new authoritative playback state if the user is the
// moderator or holds video-control.
func (s *SharedState) UpdateVideo(id domain.UserID, state domain.VideoState) error {
	room, err := s.roomOf(id)
	if err != nil {
		return err
	}
	if !room.Can(id, domain.CapVideoControl) {
		return fmt.Errorf("%w: video-control not granted", domain.ErrPermissionDenied)
	}
	state.UpdatedBy = id
	state.UpdatedAtMs = s.now().UnixMilli()
	room.Video = state
	log.Debug().Str("module", "app.shared").Str("room_id", string(room.ID)).Str("state", string(state.PlayState)).Float64("position", state.PositionSeconds).Msg("video state")
	s.Out.ToRoom(room, id, protocol.NewVideoStateChanged(state))
	return nil
}

func (s *SharedState) Grant(actor, target domain.UserID, c domain.Capability) error {
	room, err := s.requireModerator(actor)
	if err != nil {
		return err
	}
	if !room.Has(target) {
		return fmt.Errorf("%w: %s is not in the room", domain.ErrInvalidTarget, target)
	}
	if !room.Grant(target, c) {
		return nil
	}
	log.Info().Str("module", "app.shared").Str("room_id", string(room.ID)).Str("user_id", string(target)).Str("capability", string(c)).Msg("granted")
	s.Out.ToRoom(room, "", protocol.NewPermissionEvent(protocol.EvPermissionGranted, target, c))
	return nil
}

// Revoke withdraws a capability. Under a gated policy, revoking screen-share
// from the active sharer also ends the share.
func (s *SharedState) Revoke(actor, target domain.UserID, c domain.Capability) error {
	room, err := s.requireModerator(actor)
	if err != nil {
		return err
	}
	if !room.Has(target) {
		return fmt.Errorf("%w: %s is not in the room", domain.ErrInvalidTarget, target)
	}
	if !room.Revoke(target, c) {
		return nil
	}
	log.Info().Str("module", "app.shared").Str("room_id", string(room.ID)).Str("user_id", string(target)).Str("capability", string(c)).Msg("revoked")
	s.Out.ToRoom(room, "", protocol.NewPermissionEvent(protocol.EvPermissionRevoked, target, c))

	if s.GateScreenShare && c == domain.CapScreenShare && !room.Can(target, c) && s.releaseSharer(room, target) {
		s.Out.ToRoom(room, "", protocol.NewUserEvent(protocol.EvSharingStopped, target))
	}
	return nil
}
