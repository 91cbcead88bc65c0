package app

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSweeperDropsIdleRooms(t *testing.T) {
	d, _ := startDispatcher(t)
	rooms := NewRoomStore(0)
	rooms.clock = func() time.Time { return time.Now().Add(-time.Hour) }
	if err := d.Do(context.Background(), func() { rooms.CreateOrGet("IDLE") }); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Sweeper{Dispatcher: d, Rooms: rooms, TTL: time.Minute, Interval: 5 * time.Millisecond}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Run(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var n int
		_ = d.Do(context.Background(), func() { n = rooms.Len() })
		if n == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("idle room never swept")
}
