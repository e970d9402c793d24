package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/labmanager/labmanager-api/realtime"
	"go.uber.org/zap"
)

// StreamController upgrades clients to the live board stream
type StreamController struct {
	hub      *realtime.Hub
	deps     realtime.Deps
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewStreamController creates the WebSocket handler. Browser origins must
// be listed in allowedOrigins; "*" allows any.
func NewStreamController(hub *realtime.Hub, deps realtime.Deps, allowedOrigins []string, logger *zap.Logger) *StreamController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &StreamController{
		hub:  hub,
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
	}
}

// Connect handles GET /api/v1/stream. A token in the Authorization header
// or ?token= restores the session immediately.
func (h *StreamController) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	session := realtime.NewSession(h.hub, conn, h.deps)
	defer session.Close()

	h.logger.Info("Stream client connected", zap.String("session_id", session.ID))
	session.Serve(c.Request.Context(), bearerToken(c))
	h.logger.Info("Stream client disconnected", zap.String("session_id", session.ID))
}
