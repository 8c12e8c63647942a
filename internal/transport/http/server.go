package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/moodchat-server/internal/auth"
	"github.com/vovakirdan/moodchat-server/internal/config"
	"github.com/vovakirdan/moodchat-server/internal/core"
	"github.com/vovakirdan/moodchat-server/internal/service/chat"
	"github.com/vovakirdan/moodchat-server/internal/service/insights"
	"github.com/vovakirdan/moodchat-server/internal/store"
)

// NewServer builds the HTTP server: REST API, health check, and the
// websocket endpoint.
func NewServer(
	authService *auth.Service,
	st store.Store,
	registry *core.Registry,
	chatService *chat.Service,
	insightsService *insights.Service,
	cfg config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(authService, st, logger)
	insight := NewInsightHandlers(st, insightsService, logger)
	ws := NewWSHandler(authService, st, registry, chatService, logger)

	engine.GET("/health", healthHandler)
	engine.GET("/ws", ws.Handle)

	engine.POST("/api/register", api.Register)
	engine.POST("/api/login", api.Login)

	authed := engine.Group("/api", AuthMiddleware(authService, logger))
	authed.GET("/me", api.Me)
	authed.GET("/messages", insight.Messages)
	authed.GET("/mood", insight.Mood)
	authed.GET("/summary", insight.Summary)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	_, _ = fmt.Fprint(c.Writer, "ok")
}
