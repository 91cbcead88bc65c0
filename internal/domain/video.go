package domain

import (
	"math"
	"time"
)

type PlayState string

const (
	PlayStatePlaying   PlayState = "playing"
	PlayStatePaused    PlayState = "paused"
	PlayStateBuffering PlayState = "buffering"
	PlayStateEnded     PlayState = "ended"
)

// DriftToleranceSeconds is how far a local player may be from the room position before it resyncs.
const DriftToleranceSeconds = 2.0

// VideoState is the room-authoritative playback state.
type VideoState struct {
	SourceID        string    `json:"sourceId"`
	PlayState       PlayState `json:"playState"`
	PositionSeconds float64   `json:"positionSeconds"`
	Volume          float64   `json:"volume"`
	UpdatedBy       UserID    `json:"updatedBy,omitempty"`
	UpdatedAtMs     int64     `json:"updatedAtMs,omitempty"`
}

func (v VideoState) IsZero() bool { return v.SourceID == "" && v.UpdatedAtMs == 0 }

// PositionAt extrapolates the playback position to now while the video is playing.
func (v VideoState) PositionAt(now time.Time) float64 {
	if v.PlayState != PlayStatePlaying || v.UpdatedAtMs == 0 {
		return v.PositionSeconds
	}
	elapsed := float64(now.UnixMilli()-v.UpdatedAtMs) / 1000
	if elapsed < 0 {
		elapsed = 0
	}
	return v.PositionSeconds + elapsed
}

// NeedsResync reports whether a local player at localPos drifted beyond the tolerance.
func (v VideoState) NeedsResync(localPos float64, now time.Time) bool {
	return math.Abs(v.PositionAt(now)-localPos) > DriftToleranceSeconds
}

// At returns a copy with the position advanced to now.
func (v VideoState) At(now time.Time) VideoState {
	if v.IsZero() {
		return v
	}
	v.PositionSeconds = v.PositionAt(now)
	v.UpdatedAtMs = now.UnixMilli()
	return v
}
