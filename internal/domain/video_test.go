package domain

import (
	"testing"
	"time"
)

func TestVideoStateDrift(t *testing.T) {
	base := time.UnixMilli(1_000_000)
	v := VideoState{SourceID: "yt:abc", PlayState: PlayStatePlaying, PositionSeconds: 10, UpdatedAtMs: base.UnixMilli()}

	now := base.Add(5 * time.Second)
	if got := v.PositionAt(now); got != 15 {
		t.Errorf("position = %v, want 15", got)
	}
	tests := []struct {
		local float64
		want  bool
	}{
		{15, false},
		{13.5, false},
		{16.9, false},
		{12.9, true},
		{17.5, true},
	}
	for _, tt := range tests {
		if got := v.NeedsResync(tt.local, now); got != tt.want {
			t.Errorf("NeedsResync(%v) = %v, want %v", tt.local, got, tt.want)
		}
	}

	v.PlayState = PlayStatePaused
	if got := v.PositionAt(now); got != 10 {
		t.Errorf("paused position = %v, want 10", got)
	}

	at := VideoState{}.At(now)
	if !at.IsZero() {
		t.Errorf("zero state must stay zero")
	}
}
