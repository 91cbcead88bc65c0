// Package domain contains entities with only the logic needed to keep them consistent.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// UserID is derived from the connection and lives as long as it does.
type UserID string

type MediaKind string

const (
	MediaCamera     MediaKind = "camera"
	MediaMicrophone MediaKind = "microphone"
	MediaScreen     MediaKind = "screen"
)

// MediaState holds the self-reported capture flags of a user.
type MediaState struct {
	Camera     bool `json:"camera"`
	Microphone bool `json:"microphone"`
	Screen     bool `json:"screen"`
}

func (m *MediaState) Set(kind MediaKind, enabled bool) error {
	switch kind {
	case MediaCamera:
		m.Camera = enabled
	case MediaMicrophone:
		m.Microphone = enabled
	case MediaScreen:
		m.Screen = enabled
	default:
		return fmt.Errorf("%w: unknown media kind %q", ErrMalformedCommand, kind)
	}
	return nil
}

type User struct {
	ID          UserID     `json:"id"`
	DisplayName string     `json:"displayName"`
	Media       MediaState `json:"media"`
}

// NewUser builds a user for a connection. A blank name is replaced by a generated guest name.
func NewUser(id UserID, displayName string) (*User, error) {
	u := &User{ID: id}
	if strings.TrimSpace(displayName) == "" {
		u.DisplayName = GuestName(id)
		return u, nil
	}
	if err := u.SetDisplayName(displayName); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if utf8.RuneCountInString(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.DisplayName = name
	return nil
}

// GuestName derives a readable placeholder name from the user id.
func GuestName(id UserID) string {
	s := strings.ReplaceAll(string(id), "-", "")
	if len(s) > 4 {
		s = s[:4]
	}
	return "Guest-" + strings.ToUpper(s)
}
