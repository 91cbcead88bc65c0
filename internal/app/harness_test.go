package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
)

// recConn records outbound frames in memory.
type recConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	full   bool
}

func (c *recConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *recConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *recConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			t.Fatalf("bad frame %s: %v", f, err)
		}
		out = append(out, m)
	}
	return out
}

func (c *recConn) types(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, ev := range c.events(t) {
		out = append(out, ev["type"].(string))
	}
	return out
}

// ofType returns events of the given type in arrival order.
func (c *recConn) ofType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range c.events(t) {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (c *recConn) reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

type harness struct {
	t        *testing.T
	rooms    *RoomStoreImpl
	reg      *Registry
	out      *Broadcaster
	presence *Presence
	shared   *SharedState
	relay    *SignalingRelay
	chat     *Chat
	conns    map[domain.UserID]*recConn
	now      time.Time
}

type harnessOpt func(*harness)

func withGatedShare() harnessOpt { return func(h *harness) { h.shared.GateScreenShare = true } }

func withExistingRoomsOnly() harnessOpt {
	return func(h *harness) { h.presence.RequireExistingRoom = true }
}

func newHarness(t *testing.T, opts ...harnessOpt) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		rooms: NewRoomStore(0),
		reg:   NewRegistry(),
		conns: make(map[domain.UserID]*recConn),
		now:   time.UnixMilli(1_700_000_000_000),
	}
	h.out = NewBroadcaster(h.reg, SimplePolicy{})
	d := Deps{Rooms: h.rooms, Registry: h.reg, Out: h.out, Clock: func() time.Time { return h.now }}
	h.shared = NewSharedState(d, false)
	h.presence = NewPresence(d, h.shared, false)
	h.relay = NewSignalingRelay(d)
	h.chat = NewChat(d)
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *harness) connect(id domain.UserID) *recConn {
	h.t.Helper()
	u, err := domain.NewUser(id, string(id))
	if err != nil {
		h.t.Fatalf("new user: %v", err)
	}
	c := &recConn{}
	h.reg.Bind(core.SessionOf(id), u, c, nil)
	h.conns[id] = c
	return c
}

func (h *harness) join(id domain.UserID, room domain.RoomID) {
	h.t.Helper()
	if err := h.presence.Join(id, room, ""); err != nil {
		h.t.Fatalf("join %s -> %s: %v", id, room, err)
	}
}

// disconnect mirrors the gateway's disconnect handling.
func (h *harness) disconnect(id domain.UserID) {
	_ = h.presence.Leave(id)
	h.reg.Unbind(core.SessionOf(id))
}

func (h *harness) room(id domain.RoomID) *domain.Room {
	h.t.Helper()
	r, err := h.rooms.Get(id)
	if err != nil {
		h.t.Fatalf("get room %s: %v", id, err)
	}
	return r
}

func (h *harness) resetAll() {
	for _, c := range h.conns {
		c.reset()
	}
}
