package orch

import (
	"context"
	"errors"

	"github.com/dkeye/WatchParty/internal/app"
	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/metrics"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

type Options struct {
	RequireExistingRoom bool
	GateScreenShare     bool
}

// Orchestrator routes decoded commands from a session to the room services.
// All methods must run on the dispatcher goroutine.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomStore
	Out      core.Fanout

	Presence *app.Presence
	Relay    *app.SignalingRelay
	Shared   *app.SharedState
	Chat     *app.Chat
}

func New(rooms core.RoomStore, reg *app.Registry, out core.Fanout, opts Options) *Orchestrator {
	d := app.Deps{Rooms: rooms, Registry: reg, Out: out}
	shared := app.NewSharedState(d, opts.GateScreenShare)
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Out:      out,
		Presence: app.NewPresence(d, shared, opts.RequireExistingRoom),
		Relay:    app.NewSignalingRelay(d),
		Shared:   shared,
		Chat:     app.NewChat(d),
	}
}

// Connect binds a fresh signal connection. name is the remembered display name
// and may be empty or invalid, in which case a guest name is used.
func (o *Orchestrator) Connect(sid core.SessionID, conn core.SignalConnection, name string, cancel context.CancelFunc) *domain.User {
	user, err := domain.NewUser(sid.UserID(), name)
	if err != nil {
		user, _ = domain.NewUser(sid.UserID(), "")
	}
	o.Registry.Bind(sid, user, conn, cancel)
	metrics.ConnectionsLive.Inc()
	return user
}

// Disconnect runs the leave path once per session. Later calls are no-ops.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	if !o.Registry.Bound(sid) {
		return
	}
	if err := o.Presence.Leave(sid.UserID()); err != nil && !errors.Is(err, domain.ErrNotInRoom) {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("leave on disconnect")
	}
	if o.Registry.Unbind(sid) {
		metrics.ConnectionsLive.Dec()
	}
}

// Handle executes one command for the session. Failures are reported to the
// sender as error events.
func (o *Orchestrator) Handle(sid core.SessionID, cmd protocol.Command) {
	if !o.Registry.Bound(sid) {
		return
	}
	metrics.CommandsTotal.WithLabelValues(string(cmd.Kind())).Inc()
	id := sid.UserID()

	var err error
	switch c := cmd.(type) {
	case *protocol.CreateRoom:
		err = o.createRoom(id, c)
	case *protocol.JoinRoom:
		err = o.joinRoom(id, c)
	case *protocol.LeaveRoom:
		err = o.Presence.Leave(id)
	case *protocol.MakeModerator:
		err = o.Presence.ElectModerator(id, domain.UserID(c.TargetUserID))
	case *protocol.RemoveUser:
		err = o.Presence.RemoveUser(id, domain.UserID(c.TargetUserID))
	case *protocol.Rename:
		err = o.Presence.Rename(id, c.DisplayName)
	case *protocol.WhoAmI:
		o.Presence.WhoAmI(id)
	case *protocol.Ping:
		o.Out.ToUser(id, protocol.NewPong())
	case *protocol.ChatMessage:
		_, err = o.Chat.Post(id, c.Text)
	case *protocol.TypingStart:
		err = o.Chat.TypingStart(id)
	case *protocol.TypingStop:
		err = o.Chat.TypingStop(id)
	case *protocol.Signal:
		o.relay(id, c)
	case *protocol.ShareStarted:
		err = o.Shared.StartSharing(id)
	case *protocol.ShareStopped:
		err = o.Shared.StopSharing(id)
	case *protocol.VideoUpdate:
		err = o.updateVideo(id, c)
	case *protocol.Permission:
		err = o.permission(id, c)
	case *protocol.MediaState:
		err = o.Presence.SetMedia(id, domain.MediaKind(c.Media), *c.Enabled)
	default:
		log.Warn().Str("module", "orch").Str("kind", string(cmd.Kind())).Msg("unhandled command")
		err = domain.ErrMalformedCommand
	}
	if err != nil {
		o.Reject(sid, err)
	}
}

// Reject reports err to the session as an error event.
func (o *Orchestrator) Reject(sid core.SessionID, err error) {
	code := domain.CodeOf(err)
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	ev := log.Info()
	if code == domain.CodeInternal {
		ev = log.Error()
	}
	ev.Err(err).Str("module", "orch").Str("sid", string(sid)).Str("code", code).Msg("command rejected")
	o.Out.ToUser(sid.UserID(), protocol.NewError(code, err.Error()))
}
