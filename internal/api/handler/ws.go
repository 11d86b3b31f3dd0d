package handler

import (
	"net/http"

	"heartlink/backend/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy belongs to the deployment's proxy layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades an authenticated connection and hands it to the
// presence hub. A connection is admitted only if identity resolution succeeds;
// the hub then joins it to the user's notification room.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authorization token missing"})
		return
	}

	username, err := usernameFromToken(token, h.JWTSecret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid or expired token"})
		return
	}

	userID, err := h.Dir.ResolveUsername(c.Request.Context(), username)
	if err != nil {
		h.writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Error("websocket upgrade failed", "username", username, "error", err)
		return
	}

	client := presence.NewWebSocketClient(uuid.NewString(), userID, username, conn, h.Hub, h.Log)
	h.Hub.RegisterCh <- client
	client.Run()
}
