package orch

import (
	"errors"

	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/metrics"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

// relay forwards offer/answer/ICE. A vanished target is normal churn, so the
// message is dropped without telling the sender.
func (o *Orchestrator) relay(id domain.UserID, c *protocol.Signal) {
	err := o.Relay.Relay(c.Kind(), id, domain.UserID(c.TargetUserID), c.Payload)
	if err == nil {
		return
	}
	metrics.SignalsDropped.Inc()
	if !errors.Is(err, domain.ErrInvalidTarget) {
		log.Error().Err(err).Str("module", "orch").Str("user_id", string(id)).Msg("relay")
		return
	}
	log.Debug().Err(err).Str("module", "orch").Str("user_id", string(id)).Str("kind", string(c.Kind())).Msg("signal dropped")
}

func (o *Orchestrator) updateVideo(id domain.UserID, c *protocol.VideoUpdate) error {
	return o.Shared.UpdateVideo(id, domain.VideoState{
		SourceID:        c.SourceID,
		PlayState:       domain.PlayState(c.PlayState),
		PositionSeconds: *c.PositionSeconds,
		Volume:          *c.Volume,
	})
}

func (o *Orchestrator) permission(id domain.UserID, c *protocol.Permission) error {
	capability, err := domain.ParseCapability(c.Capability)
	if err != nil {
		return err
	}
	target := domain.UserID(c.TargetUserID)
	if c.Kind() == protocol.KindRevoke {
		return o.Shared.Revoke(id, target, capability)
	}
	return o.Shared.Grant(id, target, capability)
}
