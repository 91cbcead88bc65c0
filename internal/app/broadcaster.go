package app

import (
	"errors"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/metrics"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Broadcaster is the fan-out primitive: deliver to one connection or to a room.
type Broadcaster struct {
	Registry *Registry
	Policy   Policy
}

func NewBroadcaster(reg *Registry, policy Policy) *Broadcaster {
	return &Broadcaster{Registry: reg, Policy: policy}
}

var _ core.Fanout = (*Broadcaster)(nil)

func (b *Broadcaster) ToUser(id domain.UserID, ev protocol.Event) {
	conn, ok := b.Registry.Conn(core.SessionOf(id))
	if !ok {
		return
	}
	frame, ok := encode(ev)
	if !ok {
		return
	}
	b.send(nil, id, conn, frame)
}

func (b *Broadcaster) ToRoom(room *domain.Room, except domain.UserID, ev protocol.Event) {
	frame, ok := encode(ev)
	if !ok {
		return
	}
	sent := 0
	for _, m := range room.Members() {
		id := m.User.ID
		if id == except {
			continue
		}
		conn, ok := b.Registry.Conn(core.SessionOf(id))
		if !ok {
			continue
		}
		if b.send(room, id, conn, frame) {
			sent++
		}
	}
	log.Debug().Str("module", "app.fanout").Str("room_id", string(room.ID)).Str("type", string(ev.EventType())).Int("sent_to", sent).Msg("broadcast")
}

func (b *Broadcaster) Disconnect(id domain.UserID) {
	if conn, ok := b.Registry.Conn(core.SessionOf(id)); ok {
		conn.Close()
	}
}

func (b *Broadcaster) send(room *domain.Room, id domain.UserID, conn core.SignalConnection, frame core.Frame) bool {
	err := conn.TrySend(frame)
	if err == nil {
		return true
	}
	if !errors.Is(err, core.ErrBackpressure) {
		return false
	}
	metrics.FramesDropped.Inc()
	if b.Policy == nil {
		return false
	}
	switch b.Policy.OnBackPressure(room, id) {
	case KickMember:
		log.Warn().Str("module", "app.fanout").Str("user_id", string(id)).Msg("slow consumer, closing connection")
		conn.Close()
	case DropFrame, NoAction:
	}
	return false
}

func encode(ev protocol.Event) (core.Frame, bool) {
	b, err := protocol.Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Str("type", string(ev.EventType())).Msg("encode event")
		return nil, false
	}
	return b, true
}
