package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/WatchParty/internal/app"
	"github.com/dkeye/WatchParty/internal/app/orch"
	"github.com/dkeye/WatchParty/internal/config"
	"github.com/dkeye/WatchParty/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

type SignalWSController struct {
	Orch       *orch.Orchestrator
	Dispatcher *app.Dispatcher
	Limiter    *RoomRateLimiter

	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	SendBuffer int
}

func NewSignalWSController(o *orch.Orchestrator, d *app.Dispatcher, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch:       o,
		Dispatcher: d,
		Limiter:    NewRoomRateLimiter(cfg.RateLimit.Count, cfg.RateLimit.Interval),
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait(),
		SendBuffer: cfg.SendBuffer,
	}
}

// WsSignalConn queues outbound frames for the write pump. Close ends the queue;
// the write pump flushes what is left and then closes the socket.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the pumps. The remembered
// display name is read from the "display_name" context key.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", token).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.SendBuffer),
	}

	name := c.GetString("display_name")
	ctx, cancel := context.WithCancel(ctx)
	if err := ctl.Dispatcher.Do(ctx, func() { ctl.Orch.Connect(sid, conn, name, cancel) }); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bind session")
		cancel()
		_ = ws.Close()
		return
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, token, conn)
}

// RunLimiterPrune forgets idle rate limiter keys every interval until ctx ends.
func (ctl *SignalWSController) RunLimiterPrune(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			ctl.Limiter.Prune()
		}
	}
}
