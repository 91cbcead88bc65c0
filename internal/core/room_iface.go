package core

import (
	"time"

	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
)

type RoomInfo struct {
	ID          domain.RoomID `json:"roomId"`
	UserCount   int           `json:"userCount"`
	CreatedAtMs int64         `json:"createdAtMs"`
}

// RoomStore owns the set of live rooms. It is a plain state container and is
// driven from a single goroutine.
type RoomStore interface {
	// CreateOrGet returns the room with id, creating it if absent.
	CreateOrGet(id domain.RoomID) (room *domain.Room, created bool)
	// Create makes a room under a fresh id that no live room uses.
	Create() *domain.Room
	Get(id domain.RoomID) (*domain.Room, error)
	// Delete is a no-op for unknown ids.
	Delete(id domain.RoomID)
	List() []RoomInfo
	Len() int
	// Sweep deletes empty rooms created before now-ttl and returns their ids.
	Sweep(now time.Time, ttl time.Duration) []domain.RoomID
}

// Fanout delivers events to connections.
type Fanout interface {
	ToUser(id domain.UserID, ev protocol.Event)
	// ToRoom delivers to every member of the room except the excluded user ("" excludes nobody).
	ToRoom(room *domain.Room, except domain.UserID, ev protocol.Event)
	// Disconnect closes the connection of the user after queued events are flushed.
	Disconnect(id domain.UserID)
}
