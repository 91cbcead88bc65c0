package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/pion/webrtc/v4"
)

// checkSignalPayload verifies only that the fields a peer connection needs are present.
// The contents stay opaque and are relayed as received.
func checkSignalPayload(kind Kind, raw json.RawMessage) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("%w: %s: payload is null", domain.ErrMalformedCommand, kind)
	}
	switch kind {
	case KindOffer, KindAnswer:
		var sd webrtc.SessionDescription
		if err := json.Unmarshal(raw, &sd); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrMalformedCommand, kind, err)
		}
		if sd.SDP == "" {
			return fmt.Errorf("%w: %s: missing sdp", domain.ErrMalformedCommand, kind)
		}
		if !sdpTypeMatches(kind, sd.Type) {
			return fmt.Errorf("%w: %s: unexpected sdp type %q", domain.ErrMalformedCommand, kind, sd.Type.String())
		}
	case KindICECandidate:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrMalformedCommand, kind, err)
		}
		if _, ok := fields["candidate"]; !ok {
			return fmt.Errorf("%w: %s: missing candidate", domain.ErrMalformedCommand, kind)
		}
		var ci webrtc.ICECandidateInit
		if err := json.Unmarshal(raw, &ci); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrMalformedCommand, kind, err)
		}
	}
	return nil
}

func sdpTypeMatches(kind Kind, t webrtc.SDPType) bool {
	switch kind {
	case KindOffer:
		return t == webrtc.SDPTypeOffer
	case KindAnswer:
		return t == webrtc.SDPTypeAnswer || t == webrtc.SDPTypePranswer
	}
	return false
}
