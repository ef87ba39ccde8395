package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qboard/backend/config"
	"github.com/qboard/backend/internal/auth"
	"github.com/qboard/backend/internal/cache"
	"github.com/qboard/backend/internal/database"
	"github.com/qboard/backend/internal/handlers"
	"github.com/qboard/backend/internal/mail"
	"github.com/qboard/backend/internal/middleware"
	"github.com/qboard/backend/internal/repository"
	"github.com/qboard/backend/internal/templates"
	"github.com/qboard/backend/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Connect to Redis
	redis, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Running without Redis - IP moderation and live queue counts are disabled")
		redis = nil
	} else {
		defer redis.Close()
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	renderer, err := templates.New()
	if err != nil {
		log.Fatalf("Failed to load notification templates: %v", err)
	}

	notifier := mail.NewSMTPMailer(cfg.GetSMTPAddr(), cfg.SMTP.Host, cfg.SMTP.From, cfg.SMTP.User, cfg.SMTP.Password)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)

	// Spam-IP cache only exists when Redis is up and the flag is on
	var spamIPs *cache.SpamIPCache
	if redis != nil && cfg.Moderation.IPModerationEnabled {
		spamIPs = cache.NewSpamIPCache(redis)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService)
	modHandler := handlers.NewModerationHandler(db, userRepo, spamIPs, notifier, renderer, redis, cfg.Moderation)

	// Initialize WebSocket hub (only if Redis is available)
	var wsHandler *ws.Handler
	if redis != nil {
		hub := ws.NewHub(redis)
		go hub.Run()
		wsHandler = ws.NewHandler(hub, jwtService, userRepo)
	}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitRequestsPerSec)
	rateLimiter.Cleanup()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes. Registration is guarded by the spam-IP blocklist when
	// IP moderation is on.
	authRoutes := router.Group("/auth")
	{
		if spamIPs != nil {
			authRoutes.POST("/register", middleware.BlockSpamIPs(spamIPs), authHandler.Register)
		} else {
			authRoutes.POST("/register", authHandler.Register)
		}
		authRoutes.POST("/login", authHandler.Login)
	}

	// WebSocket endpoint (only if Redis is available)
	if wsHandler != nil {
		router.GET("/ws", wsHandler.HandleWebSocket)
	}

	// Protected routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		api.GET("/me", authHandler.GetMe)

		// Moderation queue
		api.POST("/moderation", middleware.RateLimitMiddleware(rateLimiter), modHandler.Moderate)
	}

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Starting qboard server on %s (env: %s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
