package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/WatchParty/internal/adapters/rtc"
	"github.com/dkeye/WatchParty/internal/adapters/signal"
	"github.com/dkeye/WatchParty/internal/app"
	"github.com/dkeye/WatchParty/internal/app/orch"
	"github.com/dkeye/WatchParty/internal/config"
	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>watch</html>"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Mode:        "test",
		StaticPath:  static,
		Secret:      "0123456789abcdef0123456789abcdef",
		ReadLimit:   4096,
		PingPeriod:  time.Second,
		SendBuffer:  8,
		RateLimit:   config.RateLimit{Count: 10, Interval: time.Second},
		MetricsPath: "/metrics",
	}

	ctx, cancel := context.WithCancel(context.Background())
	reg := app.NewRegistry()
	o := orch.New(app.NewRoomStore(0), reg, app.NewBroadcaster(reg, app.SimplePolicy{}), orch.Options{})
	d := app.NewDispatcher(8)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	return SetupRouter(ctx, cfg, Deps{
		Orch:       o,
		Dispatcher: d,
		Signal:     signal.NewSignalWSController(o, d, cfg),
		ICE:        rtc.DefaultWebRTCConfig(),
	})
}

func do(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("body %q: %v", w.Body.String(), err)
	}
	return m
}

func TestRoomSideChannel(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/rooms", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	id := decodeBody(t, w)["roomId"].(string)
	if len(id) != 6 || strings.ToUpper(id) != id {
		t.Errorf("room id %q", id)
	}

	w = do(r, http.MethodGet, "/api/rooms/"+id, "")
	body := decodeBody(t, w)
	if w.Code != http.StatusOK || body["exists"] != true || body["userCount"] != 0.0 {
		t.Errorf("lookup = %d %v", w.Code, body)
	}

	w = do(r, http.MethodGet, "/api/rooms/NOPE42", "")
	if w.Code != http.StatusNotFound || decodeBody(t, w)["exists"] != false {
		t.Errorf("missing lookup = %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/rooms", "")
	rooms := decodeBody(t, w)["rooms"].([]any)
	if len(rooms) != 1 || rooms[0].(map[string]any)["roomId"] != id {
		t.Errorf("list = %v", rooms)
	}
}

func TestDisplayNameSession(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing field", `{}`, http.StatusBadRequest},
		{"blank", `{"displayName":"   "}`, http.StatusBadRequest},
		{"too long", `{"displayName":"` + strings.Repeat("x", 40) + `"}`, http.StatusBadRequest},
		{"ok", `{"displayName":"  Ann "}`, http.StatusOK},
	}
	var cookies []*http.Cookie
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPut, "/api/me", tt.body)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.code, w.Body.String())
			}
			if w.Code == http.StatusOK {
				cookies = w.Result().Cookies()
			}
		})
	}

	w := do(r, http.MethodGet, "/api/me", "", cookies...)
	if got := decodeBody(t, w)["displayName"]; got != "Ann" {
		t.Errorf("remembered name = %v", got)
	}
}

func TestClientTokenCookie(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/me", "")
	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == "ct" {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatalf("no client token issued")
	}
	w = do(r, http.MethodGet, "/api/me", "", &http.Cookie{Name: "ct", Value: token})
	for _, c := range w.Result().Cookies() {
		if c.Name == "ct" {
			t.Errorf("token reissued for a known client")
		}
	}
}

func TestStaticAndOps(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/", "/room/ABC123"} {
		w := do(r, http.MethodGet, path, "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "watch") {
			t.Errorf("%s = %d", path, w.Code)
		}
	}

	w := do(r, http.MethodGet, "/api/ice-servers", "")
	servers := decodeBody(t, w)["iceServers"].([]any)
	if len(servers) != 1 {
		t.Errorf("ice servers = %v", servers)
	}

	w = do(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "watchparty_rooms_live") {
		t.Errorf("metrics = %d", w.Code)
	}
}
