package app

import "github.com/dkeye/WatchParty/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose outbound queue is full.
type Policy interface {
	OnBackPressure(room *domain.Room, member domain.UserID) BackpressureAction
}

// SimplePolicy disconnects slow consumers; their leave then runs as usual.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(*domain.Room, domain.UserID) BackpressureAction {
	return KickMember
}
