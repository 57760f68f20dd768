package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	_ "mingle/docs"
	"mingle/internal/config"
	"mingle/internal/handlers"
	"mingle/internal/presence"
	"mingle/internal/realtime"
	"mingle/internal/repositories"
	"mingle/internal/routes"
	"mingle/internal/services"
	"mingle/internal/utils"
)

func Run() {
	cfg := config.LoadConfig()

	// === Mongo ===
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal("mongo connect failed: ", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("mongo ping failed: ", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("mongo disconnect: %v", err)
		}
	}()
	db := client.Database(cfg.Mongo.Database)

	// === Redis ===
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis ping failed: ", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	followRepo := repositories.NewFollowRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	for _, repo := range []interface {
		EnsureIndexes(ctx context.Context) error
	}{userRepo, followRepo, chatRepo, messageRepo} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal("index setup failed: ", err)
		}
	}

	// === Services ===
	authService := services.NewAuthService(cfg.JWT.Secret, cfg.AccessTTL())
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	twilioClient := utils.NewTwilioClient(
		cfg.Twilio.AccountSID,
		cfg.Twilio.AuthToken,
		cfg.Twilio.FromNumber,
		cfg.Twilio.DryRun,
	)
	smsService := services.NewSMSService(twilioClient)
	userService := services.NewUserService(
		userRepo, emailService, smsService, authService,
		cfg.OTPTTL(), time.Duration(cfg.OTP.ResendCooldownSec)*time.Second, cfg.RefreshTTL(),
	)

	// === Realtime ===
	registry := realtime.NewRegistry()
	notifier := realtime.NewNotifier(registry)
	tracker := presence.NewTracker(rdb, userRepo, cfg.PresenceTTL())

	followService := services.NewFollowService(followRepo, notifier)
	chatService := services.NewChatService(chatRepo, messageRepo, userRepo, followService)

	// The typing tracker fires the engine's expiry callback, so it is
	// constructed against a pointer that is filled in just below.
	var engine *realtime.Engine
	typing := realtime.NewTypingTracker(cfg.TypingTTL(), func(chatID, userID string) {
		engine.ExpireTyping(chatID, userID)
	})
	engine = realtime.NewEngine(registry, chatService, followService, tracker, typing, notifier)
	typing.Start(cfg.TypingTTL() / 3)
	defer typing.Stop()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService)
	chatHandler := handlers.NewChatHandler(chatService)
	followHandler := handlers.NewFollowHandler(followService)
	presenceHandler := handlers.NewPresenceHandler(tracker)
	wsHandler := handlers.NewWSHandler(authService, engine)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	routes.SetupRoutes(
		router,
		authService,
		authHandler,
		chatHandler,
		followHandler,
		presenceHandler,
		wsHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server stopped: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
