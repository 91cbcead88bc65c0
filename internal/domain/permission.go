package domain

import "fmt"

type Capability string

const (
	CapScreenShare  Capability = "screen-share"
	CapVideoControl Capability = "video-control"
)

var AllCapabilities = []Capability{CapScreenShare, CapVideoControl}

func ParseCapability(s string) (Capability, error) {
	for _, c := range AllCapabilities {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown capability %q", ErrMalformedCommand, s)
}
