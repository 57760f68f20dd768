package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"mingle/internal/handlers"
	"mingle/internal/metrics"
	"mingle/internal/middleware"
	"mingle/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	auth *services.AuthService,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	followHandler *handlers.FollowHandler,
	presenceHandler *handlers.PresenceHandler,
	wsHandler *handlers.WSHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)
	r.POST("/auth/verify", authHandler.Verify)
	r.POST("/auth/resend", authHandler.Resend)

	// Websocket auth happens inside the handler so browser clients
	// can pass the token as a query parameter.
	r.GET("/ws", wsHandler.Serve)

	// ---- protected
	r.Use(middleware.Auth(auth))

	// CHATS
	chats := r.Group("/chats")
	{
		chats.GET("/", chatHandler.ListChats)
		chats.GET("/:id", chatHandler.GetOrCreateChat)
		chats.GET("/:id/messages", chatHandler.GetMessages)
	}

	// FOLLOWS
	follows := r.Group("/follows")
	{
		follows.POST("/:id", followHandler.Request)
		follows.POST("/:id/accept", followHandler.Accept)
		follows.POST("/:id/reject", followHandler.Reject)
	}

	// PRESENCE
	pres := r.Group("/presence")
	{
		pres.GET("/:id", presenceHandler.Online)
	}

	return r
}
