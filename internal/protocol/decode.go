package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var factories = map[Kind]func() Command{
	KindCreateRoom:    func() Command { return &CreateRoom{} },
	KindJoinRoom:      func() Command { return &JoinRoom{} },
	KindLeaveRoom:     func() Command { return &LeaveRoom{} },
	KindChatMessage:   func() Command { return &ChatMessage{} },
	KindTypingStart:   func() Command { return &TypingStart{} },
	KindTypingStop:    func() Command { return &TypingStop{} },
	KindOffer:         func() Command { return &Signal{kind: KindOffer} },
	KindAnswer:        func() Command { return &Signal{kind: KindAnswer} },
	KindICECandidate:  func() Command { return &Signal{kind: KindICECandidate} },
	KindShareStarted:  func() Command { return &ShareStarted{} },
	KindShareStopped:  func() Command { return &ShareStopped{} },
	KindVideoUpdate:   func() Command { return &VideoUpdate{} },
	KindGrant:         func() Command { return &Permission{kind: KindGrant} },
	KindRevoke:        func() Command { return &Permission{kind: KindRevoke} },
	KindMakeModerator: func() Command { return &MakeModerator{} },
	KindRemoveUser:    func() Command { return &RemoveUser{} },
	KindMediaState:    func() Command { return &MediaState{} },
	KindRename:        func() Command { return &Rename{} },
	KindWhoAmI:        func() Command { return &WhoAmI{} },
	KindPing:          func() Command { return &Ping{} },
}

// Decode parses a raw frame into a validated command.
// Every failure wraps domain.ErrMalformedCommand.
func Decode(data []byte) (Command, error) {
	var env struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: bad json: %v", domain.ErrMalformedCommand, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", domain.ErrMalformedCommand)
	}
	newCmd, ok := factories[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrMalformedCommand, env.Type)
	}
	cmd := newCmd()
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedCommand, env.Type, err)
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrMalformedCommand, env.Type, describe(err))
	}
	if s, ok := cmd.(*Signal); ok {
		if err := checkSignalPayload(s.kind, s.Payload); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
