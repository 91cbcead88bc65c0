// Package rtc holds the peer connection settings handed to browsers.
// Media flows peer to peer; the server never opens a PeerConnection itself.
package rtc

import (
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

var schemes = []string{"stun:", "stuns:", "turn:", "turns:"}

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// NewWebRTCConfig builds the configuration advertised to clients from a list
// of ICE server URLs. An empty list yields the default STUN server.
func NewWebRTCConfig(urls []string) (webrtc.Configuration, error) {
	if len(urls) == 0 {
		return DefaultWebRTCConfig(), nil
	}
	servers := make([]webrtc.ICEServer, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if !hasScheme(u) {
			return webrtc.Configuration{}, fmt.Errorf("ice server %q: unsupported scheme", u)
		}
		servers = append(servers, webrtc.ICEServer{URLs: []string{u}})
	}
	return webrtc.Configuration{ICEServers: servers}, nil
}

func hasScheme(u string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(u, s) && len(u) > len(s) {
			return true
		}
	}
	return false
}
