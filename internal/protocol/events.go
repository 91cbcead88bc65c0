package protocol

import (
	"encoding/json"

	"github.com/dkeye/WatchParty/internal/domain"
)

type EventType string

const (
	EvRoomJoined        EventType = "room-joined"
	EvUserJoined        EventType = "user-joined"
	EvUserLeft          EventType = "user-left"
	EvUserUpdated       EventType = "user-updated"
	EvLeft              EventType = "left"
	EvRemoved           EventType = "removed"
	EvModeratorChanged  EventType = "moderator-changed"
	EvChatMessage       EventType = "chat-message"
	EvUserTyping        EventType = "user-typing"
	EvUserTypingStop    EventType = "user-typing-stop"
	EvOffer             EventType = "offer"
	EvAnswer            EventType = "answer"
	EvICECandidate      EventType = "ice-candidate"
	EvSharingStarted    EventType = "sharing-started"
	EvSharingStopped    EventType = "sharing-stopped"
	EvVideoStateChanged EventType = "video-state-changed"
	EvPermissionGranted EventType = "permission-granted"
	EvPermissionRevoked EventType = "permission-revoked"
	EvMediaStateChanged EventType = "media-state-changed"
	EvWhoAmI            EventType = "whoami"
	EvPong              EventType = "pong"
	EvError             EventType = "error"
)

// Event is one outbound message.
type Event interface {
	EventType() EventType
}

type header struct {
	Type EventType `json:"type"`
}

func (h header) EventType() EventType { return h.Type }

type RoomJoined struct {
	header
	User     UserView `json:"user"`
	Snapshot Snapshot `json:"snapshot"`
}

type UserJoined struct {
	header
	User UserView `json:"user"`
}

type UserEvent struct {
	header
	UserID domain.UserID `json:"userId"`
}

type UserUpdated struct {
	header
	User UserView `json:"user"`
}

type RoomEvent struct {
	header
	RoomID   domain.RoomID `json:"roomId"`
	ByUserID domain.UserID `json:"byUserId,omitempty"`
}

type ChatMessageEvent struct {
	header
	Message domain.Message `json:"message"`
}

type SignalEvent struct {
	header
	SenderID domain.UserID  `json:"senderId"`
	Payload  json.RawMessage `json:"payload"`
}

type VideoStateChanged struct {
	header
	State domain.VideoState `json:"state"`
}

type PermissionEvent struct {
	header
	UserID     domain.UserID     `json:"userId"`
	Capability domain.Capability `json:"capability"`
}

type MediaStateChanged struct {
	header
	UserID  domain.UserID    `json:"userId"`
	Media   domain.MediaKind `json:"kind"`
	Enabled bool             `json:"enabled"`
}

type WhoAmIEvent struct {
	header
	User   domain.User   `json:"user"`
	RoomID domain.RoomID `json:"roomId,omitempty"`
}

type Pong struct {
	header
}

type ErrorEvent struct {
	header
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewRoomJoined(user UserView, snap Snapshot) RoomJoined {
	return RoomJoined{header{EvRoomJoined}, user, snap}
}

func NewUserJoined(user UserView) UserJoined { return UserJoined{header{EvUserJoined}, user} }

func NewUserUpdated(user UserView) UserUpdated { return UserUpdated{header{EvUserUpdated}, user} }

// NewUserEvent builds the events that only name a user:
// user-left, moderator-changed, typing and sharing notices.
func NewUserEvent(t EventType, id domain.UserID) UserEvent { return UserEvent{header{t}, id} }

func NewLeft(room domain.RoomID) RoomEvent { return RoomEvent{header: header{EvLeft}, RoomID: room} }

func NewRemoved(room domain.RoomID, by domain.UserID) RoomEvent {
	return RoomEvent{header{EvRemoved}, room, by}
}

func NewChatMessage(m domain.Message) ChatMessageEvent {
	return ChatMessageEvent{header{EvChatMessage}, m}
}

// NewSignalEvent maps an inbound signaling kind to the outbound event of the same name.
func NewSignalEvent(kind Kind, sender domain.UserID, payload json.RawMessage) SignalEvent {
	return SignalEvent{header{EventType(kind)}, sender, payload}
}

func NewVideoStateChanged(s domain.VideoState) VideoStateChanged {
	return VideoStateChanged{header{EvVideoStateChanged}, s}
}

func NewPermissionEvent(t EventType, id domain.UserID, c domain.Capability) PermissionEvent {
	return PermissionEvent{header{t}, id, c}
}

func NewMediaStateChanged(id domain.UserID, kind domain.MediaKind, enabled bool) MediaStateChanged {
	return MediaStateChanged{header{EvMediaStateChanged}, id, kind, enabled}
}

func NewWhoAmI(u domain.User, room domain.RoomID) WhoAmIEvent {
	return WhoAmIEvent{header{EvWhoAmI}, u, room}
}

func NewPong() Pong { return Pong{header{EvPong}} }

func NewError(code, msg string) ErrorEvent { return ErrorEvent{header{EvError}, code, msg} }

// Encode marshals an event into a text frame.
func Encode(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
