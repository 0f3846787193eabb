package ws

import (
	"net/http"

	"recipebook_backend/internal/auth"
	"recipebook_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The token requirement is the access control; origins are not
		// restricted.
		return true
	},
}

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ws", h.ServeWS)
}

// ServeWS upgrades the connection. Browsers cannot set headers on websocket
// requests, so the JWT arrives as a query parameter.
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	claims, err := auth.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger().Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		UserID:  claims.UserID,
		conn:    conn,
		send:    make(chan interface{}, 256),
		manager: h.manager,
	}
	h.manager.register <- client

	go client.readPump()
	go client.writePump()
}
