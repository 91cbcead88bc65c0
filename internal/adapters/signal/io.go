package signal

import (
	"context"
	"time"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				log.Debug().Str("module", "signal").Msg("writePump queue closed")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, token string, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		c.Close()
		// The session context may already be gone; the leave must still run.
		if err := ctl.Dispatcher.Submit(context.Background(), func() { ctl.Orch.Disconnect(sid) }); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("disconnect not dispatched")
		}
	}()

	c.conn.SetReadLimit(ctl.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(ctl.PongWait))
		if err := ctl.handleFrame(ctx, sid, token, data); err != nil {
			log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump stop")
			return
		}
	}
}

// handleFrame decodes one inbound frame and queues it on the dispatcher.
// It fails only when the dispatcher no longer accepts work.
func (ctl *SignalWSController) handleFrame(ctx context.Context, sid core.SessionID, token string, data []byte) error {
	if ctl.Limiter != nil && !ctl.Limiter.Allow(token) {
		return ctl.Dispatcher.Submit(ctx, func() { ctl.Orch.Reject(sid, domain.ErrRateLimited) })
	}
	cmd, err := protocol.Decode(data)
	if err != nil {
		return ctl.Dispatcher.Submit(ctx, func() { ctl.Orch.Reject(sid, err) })
	}
	return ctl.Dispatcher.Submit(ctx, func() { ctl.Orch.Handle(sid, cmd) })
}
