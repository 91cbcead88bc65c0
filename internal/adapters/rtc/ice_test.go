package rtc

import "testing"

func TestNewWebRTCConfig(t *testing.T) {
	tests := []struct {
		name    string
		urls    []string
		want    int
		wantErr bool
	}{
		{"default", nil, 1, false},
		{"stun and turn", []string{"stun:a.example:3478", " turns:b.example:5349 "}, 2, false},
		{"http url", []string{"https://example.com"}, 0, true},
		{"bare scheme", []string{"stun:"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewWebRTCConfig(tt.urls)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(cfg.ICEServers) != tt.want {
				t.Errorf("servers = %v", cfg.ICEServers)
			}
		})
	}
}
