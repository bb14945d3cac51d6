package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ollamachat/chathub/internal/ai"
	"github.com/ollamachat/chathub/internal/config"
	"github.com/ollamachat/chathub/internal/core"
)

// NewServer builds the HTTP server: websocket endpoint plus the
// read-only REST surface.
//
// The websocket handler hangs off a plain mux rather than gin: gin's
// response writer refuses to hijack once the 101 upgrade is written,
// which kills the connection before the first event.
func NewServer(hub *core.Hub, backend *ai.Client, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	rooms := NewRoomHandlers(hub, logger)
	status := NewStatusHandlers(backend, logger)

	router.GET("/health", status.Health)
	router.GET("/ollama-status", status.OllamaStatus)
	router.GET("/rooms", rooms.ListRooms)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
