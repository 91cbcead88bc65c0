package app

import (
	"crypto/rand"
	"io"

	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/oklog/ulid/v2"
)

// Chat keeps the room message log and fans out typing notices.
type Chat struct {
	Deps
	entropy io.Reader
}

func NewChat(d Deps) *Chat {
	return &Chat{Deps: d, entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Post appends the message to the log and delivers it to every member,
// the sender included, so all copies share one id and timestamp.
func (c *Chat) Post(id domain.UserID, text string) (domain.Message, error) {
	room, err := c.roomOf(id)
	if err != nil {
		return domain.Message{}, err
	}
	m, _ := room.Member(id)
	now := c.now()
	msg := domain.Message{
		ID:          ulid.MustNew(ulid.Timestamp(now), c.entropy).String(),
		UserID:      id,
		DisplayName: m.User.DisplayName,
		Text:        text,
		TimestampMs: now.UnixMilli(),
	}
	room.AppendMessage(msg)
	c.Out.ToRoom(room, "", protocol.NewChatMessage(msg))
	return msg, nil
}

func (c *Chat) TypingStart(id domain.UserID) error {
	return c.typing(id, protocol.EvUserTyping)
}

func (c *Chat) TypingStop(id domain.UserID) error {
	return c.typing(id, protocol.EvUserTypingStop)
}

func (c *Chat) typing(id domain.UserID, t protocol.EventType) error {
	room, err := c.roomOf(id)
	if err != nil {
		return err
	}
	c.Out.ToRoom(room, id, protocol.NewUserEvent(t, id))
	return nil
}
