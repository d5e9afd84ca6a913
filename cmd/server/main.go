package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/glimpse-social/backend/internal/auth"
	"github.com/glimpse-social/backend/internal/cache"
	"github.com/glimpse-social/backend/internal/config"
	"github.com/glimpse-social/backend/internal/database"
	"github.com/glimpse-social/backend/internal/handlers"
	"github.com/glimpse-social/backend/internal/logger"
	"github.com/glimpse-social/backend/internal/metrics"
	"github.com/glimpse-social/backend/internal/middleware"
	"github.com/glimpse-social/backend/internal/realtime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("Glimpse server starting", zap.String("environment", cfg.Environment))

	if err := database.Initialize(cfg.DatabaseURL, !cfg.IsProduction()); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional; without it the rate limiter passes everything
	if cfg.RedisHost != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("Redis unavailable, continuing without rate limiting", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	metrics.Initialize()

	authService := auth.NewService(cfg.JWTSecret)

	hub := realtime.NewHub()
	wsHandler := realtime.NewHandler(hub, authService)

	h := handlers.New(hub, authService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "glimpse-backend",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(300, time.Minute))
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", middleware.RequireAuth(authService), h.Me)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(authService))
		{
			protected.POST("/messages/:id", h.SendMessage)
			protected.GET("/messages/:id", h.GetMessages)

			protected.POST("/posts", h.CreatePost)
			protected.GET("/posts", h.GetFeed)
			protected.GET("/posts/reels", h.GetReels)
			protected.DELETE("/posts/:id", h.DeletePost)
			protected.POST("/posts/:id/like", h.LikePost)
			protected.DELETE("/posts/:id/like", h.UnlikePost)
			protected.POST("/posts/:id/comments", h.CreateComment)
			protected.GET("/posts/:id/comments", h.GetComments)
			protected.POST("/posts/:id/bookmark", h.BookmarkPost)

			protected.GET("/users/:id", h.GetUser)
			protected.GET("/users/:id/posts", h.GetUserPosts)
			protected.POST("/users/:id/follow", h.FollowUser)
			protected.DELETE("/users/:id/follow", h.UnfollowUser)

			protected.GET("/presence/online", h.GetOnlineUsers)
			protected.POST("/presence/status", h.GetOnlineStatus)
			protected.GET("/realtime/stats", h.GetRealtimeStats)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := hub.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("Hub shutdown error", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("HTTP shutdown error", zap.Error(err))
	}

	logger.Log.Info("Server stopped")
}
