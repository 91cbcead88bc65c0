package core

import "github.com/dkeye/WatchParty/internal/domain"

// SessionID identifies one live connection. The user bound to it shares the id.
type SessionID string

func (s SessionID) UserID() domain.UserID { return domain.UserID(s) }

func SessionOf(id domain.UserID) SessionID { return SessionID(id) }
