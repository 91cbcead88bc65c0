package signal

import (
	"testing"
	"time"
)

func TestRoomRateLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRoomRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("first two attempts must pass")
	}
	if rl.Allow("a") {
		t.Errorf("third attempt inside the window passed")
	}
	if !rl.Allow("b") {
		t.Errorf("keys must not share a budget")
	}

	now = now.Add(1100 * time.Millisecond)
	if !rl.Allow("a") {
		t.Errorf("window did not slide")
	}

	now = now.Add(5 * time.Second)
	rl.Prune()
	if rl.Len() != 0 {
		t.Errorf("idle keys kept: %d", rl.Len())
	}
}
