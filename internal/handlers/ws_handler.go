package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mingle/internal/middleware"
	"mingle/internal/realtime"
	"mingle/internal/services"
)

type WSHandler struct {
	auth     *services.AuthService
	engine   *realtime.Engine
	upgrader websocket.Upgrader
}

func NewWSHandler(auth *services.AuthService, engine *realtime.Engine) *WSHandler {
	return &WSHandler{
		auth:   auth,
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve authenticates the connection and hands it to the realtime engine.
// The token comes from the Authorization header or, for browser clients
// that cannot set headers on websocket requests, a token query parameter.
func (h *WSHandler) Serve(c *gin.Context) {
	token := middleware.BearerToken(c.Request)
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
		return
	}

	claims, err := h.auth.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	session := realtime.NewSession(claims.UserID, claims.Username, conn)
	h.engine.Run(c.Request.Context(), session)
}
