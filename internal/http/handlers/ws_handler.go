package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/service"
	"github.com/apkmarket/backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений модерационного потока.
// Администраторы получают все события модерации, разработчик — только события
// по собственным приложениям.
type WSHandler struct {
	hub    *ws.Hub
	tokens *service.TokenManager

	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер.
func NewWSHandler(hub *ws.Hub, tokens *service.TokenManager) *WSHandler {
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access токен обязателен"})
		return
	}

	subjectID, kind, err := h.tokens.Parse(rawToken)
	if err != nil || subjectID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "невалидный access токен"})
		return
	}

	if kind != models.KindAdmin && kind != models.KindDeveloper {
		c.JSON(http.StatusForbidden, gin.H{"error": "поток модерации доступен администраторам и разработчикам"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var client *ws.Client
	if kind == models.KindAdmin {
		client = ws.NewAdminClient(conn, h.hub)
	} else {
		client = ws.NewDeveloperClient(conn, h.hub, subjectID)
	}

	h.hub.Register(client)
	client.Run(c.Request.Context())
}
