package api

import (
	"net/http"

	"BB_donate_backend/internal/notify"
	"BB_donate_backend/pkg/auth"
	"BB_donate_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type eventRoutes struct {
	hub *notify.Hub
	a   *auth.TelegramAuth
}

func NewEventRoutes(handler *gin.RouterGroup, hub *notify.Hub, a *auth.TelegramAuth) {
	r := &eventRoutes{hub: hub, a: a}
	h := handler.Group("/events")
	h.Use(a.TelegramAuthMiddleware())

	h.GET("/ws", r.handleWebSocket)
}

func (r *eventRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	r.hub.Register(telegramUser.ID, conn)

	// Drain the connection so close frames are processed; clients only listen.
	go func() {
		defer r.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
