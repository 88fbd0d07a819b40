// Package http is the REST surface: room listing, rule documents, audio
// upload, report generation and the websocket entry point.
package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/adapters/signal"
	"github.com/moeenhq/diwan/internal/app"
	"github.com/moeenhq/diwan/internal/compliance"
	"github.com/moeenhq/diwan/internal/config"
	"github.com/moeenhq/diwan/internal/report"
	"github.com/moeenhq/diwan/internal/storage"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins a stable per-browser token in a cookie. The
// token doubles as the websocket connection id.
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

// Deps is everything the HTTP surface reaches into.
type Deps struct {
	Cfg        *config.Config
	Registry   *app.Registry
	Signal     *signal.Controller
	Monitor    *compliance.Monitor
	Classifier AttireClassifier
	Pipeline   *report.Pipeline
	Ledger     *report.Ledger
	Store      *storage.Store
}

func SetupRouter(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Cfg
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("DiwanSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &handlers{Deps: d, codes: newCodeStore()}

	r.GET("/health", h.health)

	api := r.Group("/api")

	api.GET("/rooms", h.rooms)
	api.GET("/session-rules", h.sessionRules)
	api.GET("/webrtc-config", h.webrtcConfig)
	api.GET("/alerts/:roomId", h.alerts)

	api.POST("/validate-join", h.validateJoin)
	api.POST("/verification-code", h.sendVerificationCode)
	api.POST("/verify-code", h.verifyCode)

	api.POST("/check-dress-code", h.checkDressCode)
	api.POST("/upload-audio", h.uploadAudio)
	api.POST("/session-report", h.sessionReport)

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		d.Signal.HandleSignal(ctx, c)
	})

	return r
}
