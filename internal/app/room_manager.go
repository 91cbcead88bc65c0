package app

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/metrics"
	"github.com/rs/zerolog/log"
)

const (
	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIDLen      = 6
)

// RoomStoreImpl is the in-memory RoomStore. Not safe for concurrent use.
type RoomStoreImpl struct {
	rooms        map[domain.RoomID]*domain.Room
	historyLimit int
	newID        func() domain.RoomID
	clock        func() time.Time
}

func NewRoomStore(historyLimit int) *RoomStoreImpl {
	return &RoomStoreImpl{
		rooms:        make(map[domain.RoomID]*domain.Room),
		historyLimit: historyLimit,
		newID:        randomRoomID,
		clock:        time.Now,
	}
}

var _ core.RoomStore = (*RoomStoreImpl)(nil)

func (s *RoomStoreImpl) CreateOrGet(id domain.RoomID) (*domain.Room, bool) {
	if room, ok := s.rooms[id]; ok {
		return room, false
	}
	room := domain.NewRoom(id, s.clock(), s.historyLimit)
	s.rooms[id] = room
	metrics.RoomsLive.Set(float64(len(s.rooms)))
	log.Info().Str("module", "app.rooms").Str("room_id", string(id)).Msg("room created")
	return room, true
}

// Create draws ids until one is free, so uniqueness never rests on probability.
func (s *RoomStoreImpl) Create() *domain.Room {
	for {
		id := s.newID()
		if _, taken := s.rooms[id]; taken {
			log.Debug().Str("module", "app.rooms").Str("room_id", string(id)).Msg("room id collision")
			continue
		}
		room, _ := s.CreateOrGet(id)
		return room
	}
}

func (s *RoomStoreImpl) Get(id domain.RoomID) (*domain.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRoomNotFound, id)
	}
	return room, nil
}

func (s *RoomStoreImpl) Delete(id domain.RoomID) {
	if _, ok := s.rooms[id]; !ok {
		return
	}
	delete(s.rooms, id)
	metrics.RoomsLive.Set(float64(len(s.rooms)))
	log.Info().Str("module", "app.rooms").Str("room_id", string(id)).Msg("room deleted")
}

func (s *RoomStoreImpl) List() []core.RoomInfo {
	out := make([]core.RoomInfo, 0, len(s.rooms))
	for id, r := range s.rooms {
		out = append(out, core.RoomInfo{ID: id, UserCount: r.Len(), CreatedAtMs: r.CreatedAt.UnixMilli()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtMs != out[j].CreatedAtMs {
			return out[i].CreatedAtMs < out[j].CreatedAtMs
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *RoomStoreImpl) Len() int { return len(s.rooms) }

func (s *RoomStoreImpl) Sweep(now time.Time, ttl time.Duration) []domain.RoomID {
	var swept []domain.RoomID
	for id, r := range s.rooms {
		if r.Empty() && now.Sub(r.CreatedAt) >= ttl {
			swept = append(swept, id)
		}
	}
	for _, id := range swept {
		s.Delete(id)
	}
	return swept
}

func randomRoomID() domain.RoomID {
	b := make([]byte, roomIDLen)
	max := big.NewInt(int64(len(roomIDAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("room id entropy: %v", err))
		}
		b[i] = roomIDAlphabet[n.Int64()]
	}
	return domain.RoomID(b)
}
