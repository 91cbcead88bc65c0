package app

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

// SignalingRelay forwards offer/answer/ICE messages between two members of a room.
// It keeps no state of its own.
type SignalingRelay struct {
	Deps
}

func NewSignalingRelay(d Deps) *SignalingRelay {
	return &SignalingRelay{Deps: d}
}

// Relay delivers payload to target. A target that is gone or outside the
// sender's room yields ErrInvalidTarget, which callers drop silently.
func (s *SignalingRelay) Relay(kind protocol.Kind, sender, target domain.UserID, payload json.RawMessage) error {
	room, err := s.roomOf(sender)
	if err != nil {
		return fmt.Errorf("%w: sender not in a room", domain.ErrInvalidTarget)
	}
	if target == sender || !room.Has(target) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTarget, target)
	}
	if _, ok := s.Registry.Conn(core.SessionOf(target)); !ok {
		return fmt.Errorf("%w: %s disconnected", domain.ErrInvalidTarget, target)
	}
	s.Out.ToUser(target, protocol.NewSignalEvent(kind, sender, payload))
	log.Debug().Str("module", "app.signaling").Str("kind", string(kind)).Str("from", string(sender)).Str("to", string(target)).Msg("relayed")
	return nil
}
