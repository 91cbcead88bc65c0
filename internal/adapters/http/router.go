package http

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/dkeye/WatchParty/internal/adapters/signal"
	"github.com/dkeye/WatchParty/internal/app"
	"github.com/dkeye/WatchParty/internal/app/orch"
	"github.com/dkeye/WatchParty/internal/config"
	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const sessionNameKey = "display_name"

type Deps struct {
	Orch       *orch.Orchestrator
	Dispatcher *app.Dispatcher
	Signal     *signal.SignalWSController
	ICE        webrtc.Configuration
}

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// DisplayNameMiddleware exposes the remembered display name to later handlers.
func DisplayNameMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if name, ok := sessions.Default(c).Get(sessionNameKey).(string); ok {
			c.Set(sessionNameKey, name)
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("WatchSessions", store))
	r.Use(ClientTokenMiddleware())

	index := filepath.Join(cfg.StaticPath, "index.html")
	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) { c.File(index) })
	r.GET("/room/:id", func(c *gin.Context) { c.File(index) })

	if cfg.MetricsPath != "" {
		r.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &handlers{deps: deps}
	api := r.Group("/api")
	api.POST("/rooms", h.createRoom)
	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/:id", h.lookupRoom)
	api.GET("/me", h.me)
	api.PUT("/me", h.rename)
	api.GET("/ice-servers", h.iceServers)

	api.GET("/ws/signal", DisplayNameMiddleware(), func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws signal endpoint hit")
		deps.Signal.HandleSignal(ctx, c)
	})

	return r
}

type handlers struct {
	deps Deps
}

type RoomResponse struct {
	RoomID    domain.RoomID `json:"roomId"`
	Exists    bool          `json:"exists"`
	UserCount int           `json:"userCount"`
}

type NameRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}

type NameResponse struct {
	DisplayName string `json:"displayName"`
}

func (h *handlers) createRoom(c *gin.Context) {
	var id domain.RoomID
	err := h.deps.Dispatcher.Do(c.Request.Context(), func() {
		id = h.deps.Orch.Rooms.Create().ID
	})
	if err != nil {
		unavailable(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("room_id", string(id)).Msg("room created over http")
	c.JSON(http.StatusCreated, RoomResponse{RoomID: id, Exists: true})
}

func (h *handlers) listRooms(c *gin.Context) {
	var rooms []core.RoomInfo
	if err := h.deps.Dispatcher.Do(c.Request.Context(), func() { rooms = h.deps.Orch.Rooms.List() }); err != nil {
		unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *handlers) lookupRoom(c *gin.Context) {
	resp := RoomResponse{RoomID: domain.RoomID(c.Param("id"))}
	err := h.deps.Dispatcher.Do(c.Request.Context(), func() {
		if room, err := h.deps.Orch.Rooms.Get(resp.RoomID); err == nil {
			resp.Exists = true
			resp.UserCount = room.Len()
		}
	})
	if err != nil {
		unavailable(c, err)
		return
	}
	if !resp.Exists {
		c.JSON(http.StatusNotFound, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) me(c *gin.Context) {
	name, _ := sessions.Default(c).Get(sessionNameKey).(string)
	c.JSON(http.StatusOK, NameResponse{DisplayName: name})
}

// rename remembers the display name for future connections of this browser.
func (h *handlers) rename(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid displayName"})
		return
	}
	var probe domain.User
	if err := probe.SetDisplayName(req.DisplayName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := sessions.Default(c)
	s.Set(sessionNameKey, probe.DisplayName)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
		return
	}
	c.JSON(http.StatusOK, NameResponse{DisplayName: probe.DisplayName})
}

func (h *handlers) iceServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.deps.ICE.ICEServers})
}

func unavailable(c *gin.Context, err error) {
	if !errors.Is(err, app.ErrDispatcherStopped) && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Str("module", "adapters.http").Msg("dispatch")
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
}
