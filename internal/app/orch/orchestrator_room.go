package orch

import (
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) createRoom(id domain.UserID, c *protocol.CreateRoom) error {
	roomID, err := o.Presence.CreateRoom(id, c.DisplayName)
	if err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("user_id", string(id)).Str("room_id", string(roomID)).Msg("room created by client")
	return nil
}

func (o *Orchestrator) joinRoom(id domain.UserID, c *protocol.JoinRoom) error {
	roomID := domain.RoomID(c.RoomID)
	if err := o.Presence.Join(id, roomID, c.DisplayName); err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("user_id", string(id)).Str("room_id", string(roomID)).Msg("joined")
	return nil
}
