package app

import (
	"context"
	"time"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically drops empty rooms older than TTL, such as rooms created
// over HTTP that nobody joined. Rooms emptied by a leave are deleted eagerly.
type Sweeper struct {
	Dispatcher *Dispatcher
	Rooms      core.RoomStore
	TTL        time.Duration
	Interval   time.Duration
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			err := s.Dispatcher.Do(ctx, func() {
				swept := s.Rooms.Sweep(now, s.TTL)
				if len(swept) == 0 {
					return
				}
				metrics.RoomsSwept.Add(float64(len(swept)))
				log.Info().Str("module", "app.sweeper").Int("rooms", len(swept)).Msg("swept empty rooms")
			})
			if err != nil {
				return nil
			}
		}
	}
}
