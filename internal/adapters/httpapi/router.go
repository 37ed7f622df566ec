// Package httpapi wires HTTP routes (REST + WS upgrade) to the
// coordinator.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/adapters/ws"
	"github.com/swipxin/Backendswipxin/internal/app"
	"github.com/swipxin/Backendswipxin/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.JWTSecret))
	r.Use(sessions.Sessions("SwipxinSession", store))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ctl := ws.NewController(coord, cfg)

	api := r.Group("/api", AuthMiddleware(cfg.JWTSecret))

	// GET /api/ws — upgrade to the signaling WebSocket
	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "httpapi").Str("user", c.GetString("user_id")).Msg("ws endpoint hit")
		ctl.HandleWS(ctx, c)
	})

	// GET /api/rtc/config — ICE servers for the client's peer connection
	api.GET("/rtc/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, webrtc.Configuration{
			ICEServers: []webrtc.ICEServer{{URLs: cfg.ICEServers}},
		})
	})

	// GET /api/rooms — active room listing
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": coord.Rooms.List(), "queueSize": coord.Matchmaker.QueueLen()})
	})

	admin := api.Group("/admin", adminOnly())

	// POST /api/admin/reset — force-clear in-memory matching state
	admin.POST("/reset", func(c *gin.Context) {
		coord.Reset()
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	})

	return r
}
