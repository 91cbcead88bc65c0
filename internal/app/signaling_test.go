package app

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
)

func TestRelayOffer(t *testing.T) {
	h := newHarness(t)
	a := h.connect("A")
	b := h.connect("B")
	c := h.connect("C")
	for _, u := range []domain.UserID{"A", "B", "C"} {
		h.join(u, "R")
	}
	h.resetAll()

	payload := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	if err := h.relay.Relay(protocol.KindOffer, "A", "B", payload); err != nil {
		t.Fatalf("relay: %v", err)
	}

	offers := b.ofType(t, "offer")
	if len(offers) != 1 || offers[0]["senderId"] != "A" {
		t.Fatalf("B offers = %v", offers)
	}
	if sdp := offers[0]["payload"].(map[string]any)["sdp"]; sdp != "v=0" {
		t.Errorf("payload sdp = %v", sdp)
	}
	if len(a.events(t)) != 0 || len(c.events(t)) != 0 {
		t.Errorf("offer leaked to other members: A=%v C=%v", a.types(t), c.types(t))
	}
}

func TestRelayDropsAbsentTargets(t *testing.T) {
	h := newHarness(t)
	h.connect("A")
	h.connect("B")
	h.connect("X")
	h.join("A", "R")
	h.join("B", "R")
	h.join("X", "OTHER")
	payload := json.RawMessage(`{"candidate":""}`)

	tests := []struct {
		name   string
		sender domain.UserID
		target domain.UserID
	}{
		{"unknown target", "A", "ghost"},
		{"target in another room", "A", "X"},
		{"self", "A", "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.relay.Relay(protocol.KindICECandidate, tt.sender, tt.target, payload)
			if !errors.Is(err, domain.ErrInvalidTarget) {
				t.Errorf("err = %v, want invalid target", err)
			}
		})
	}

	h.disconnect("B")
	if err := h.relay.Relay(protocol.KindAnswer, "A", "B", payload); !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("relay to disconnected peer err = %v", err)
	}
}
