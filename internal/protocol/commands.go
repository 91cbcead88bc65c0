// Package protocol defines the closed set of inbound commands and outbound events
// exchanged over the signal connection. Every frame is a flat JSON object tagged by "type".
package protocol

import "encoding/json"

type Kind string

const (
	KindCreateRoom    Kind = "create-room"
	KindJoinRoom      Kind = "join-room"
	KindLeaveRoom     Kind = "leave-room"
	KindChatMessage   Kind = "chat-message"
	KindTypingStart   Kind = "typing-start"
	KindTypingStop    Kind = "typing-stop"
	KindOffer         Kind = "offer"
	KindAnswer        Kind = "answer"
	KindICECandidate  Kind = "ice-candidate"
	KindShareStarted  Kind = "screen-sharing-started"
	KindShareStopped  Kind = "screen-sharing-stopped"
	KindVideoUpdate   Kind = "video-state-update"
	KindGrant         Kind = "grant-permission"
	KindRevoke        Kind = "revoke-permission"
	KindMakeModerator Kind = "make-moderator"
	KindRemoveUser    Kind = "remove-user"
	KindMediaState    Kind = "media-state"
	KindRename        Kind = "rename"
	KindWhoAmI        Kind = "whoami"
	KindPing          Kind = "ping"
)

// Command is one decoded and validated inbound message.
type Command interface {
	Kind() Kind
}

type CreateRoom struct {
	DisplayName string `json:"displayName" validate:"max=64"`
}

type JoinRoom struct {
	RoomID      string `json:"roomId" validate:"required,max=64,printascii"`
	DisplayName string `json:"displayName" validate:"max=64"`
}

type LeaveRoom struct{}

type ChatMessage struct {
	Text string `json:"text" validate:"required"`
}

type TypingStart struct{}

type TypingStop struct{}

// Signal carries an offer, answer or ICE candidate. Payload is relayed verbatim.
type Signal struct {
	kind         Kind
	TargetUserID string          `json:"targetUserId" validate:"required"`
	Payload      json.RawMessage `json:"payload" validate:"required"`
}

type ShareStarted struct{}

type ShareStopped struct{}

type VideoUpdate struct {
	SourceID        string   `json:"sourceId" validate:"required"`
	PlayState       string   `json:"playState" validate:"required,oneof=playing paused buffering ended"`
	PositionSeconds *float64 `json:"positionSeconds" validate:"required,gte=0"`
	Volume          *float64 `json:"volume" validate:"required,gte=0,lte=100"`
}

// Permission is a grant-permission or revoke-permission command.
type Permission struct {
	kind         Kind
	TargetUserID string `json:"targetUserId" validate:"required"`
	Capability   string `json:"capability" validate:"required,oneof=screen-share video-control"`
}

type MakeModerator struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
}

type RemoveUser struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
}

type MediaState struct {
	Media   string `json:"kind" validate:"required,oneof=camera microphone screen"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

type Rename struct {
	DisplayName string `json:"displayName" validate:"required"`
}

type WhoAmI struct{}

type Ping struct{}

func (CreateRoom) Kind() Kind    { return KindCreateRoom }
func (JoinRoom) Kind() Kind      { return KindJoinRoom }
func (LeaveRoom) Kind() Kind     { return KindLeaveRoom }
func (ChatMessage) Kind() Kind   { return KindChatMessage }
func (TypingStart) Kind() Kind   { return KindTypingStart }
func (TypingStop) Kind() Kind    { return KindTypingStop }
func (s Signal) Kind() Kind      { return s.kind }
func (ShareStarted) Kind() Kind  { return KindShareStarted }
func (ShareStopped) Kind() Kind  { return KindShareStopped }
func (VideoUpdate) Kind() Kind   { return KindVideoUpdate }
func (p Permission) Kind() Kind  { return p.kind }
func (MakeModerator) Kind() Kind { return KindMakeModerator }
func (RemoveUser) Kind() Kind    { return KindRemoveUser }
func (MediaState) Kind() Kind    { return KindMediaState }
func (Rename) Kind() Kind        { return KindRename }
func (WhoAmI) Kind() Kind        { return KindWhoAmI }
func (Ping) Kind() Kind          { return KindPing }

// NewSignal builds a signaling command, mostly for tests and in-process callers.
func NewSignal(kind Kind, target string, payload json.RawMessage) *Signal {
	return &Signal{kind: kind, TargetUserID: target, Payload: payload}
}

func NewPermission(kind Kind, target, capability string) *Permission {
	return &Permission{kind: kind, TargetUserID: target, Capability: capability}
}
