package main

import (
	"context"                     // context package is needed for Redis operations and shutdown
	"errors"                      // Server close detection
	"growth_hub/internal/api"     // Custom package for API handlers
	"growth_hub/internal/config"  // Custom package for configuration
	"growth_hub/internal/db"      // Database connection
	"growth_hub/internal/gateway" // LLM gateway client
	"net/http"                    // HTTP server
	"os"                          // OS signals
	"os/signal"                   // Signal notification
	"syscall"                     // SIGTERM
	"time"                        // Timeouts

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	database, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// No client timeout: generations stream for as long as the model writes
	upstream := gateway.NewUpstream(&http.Client{}, cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AIModel)
	if cfg.AIGatewayKey == "" {
		logrus.Warn("AI_GATEWAY_KEY is empty, AI generation will fail upstream")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{
		DB:           database,
		Redis:        redisClient,
		Upstream:     upstream,
		JWTSecret:    cfg.JWTSecret,
		AIDailyQuota: cfg.AIDailyQuota,
		AIRatePerMin: cfg.AIRatePerMin,
		AIRateBurst:  cfg.AIRateBurst,

		PublicRatePerMin: cfg.PublicRatePerMin,
		PublicRateBurst:  cfg.PublicRateBurst,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Server is shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("server forced to shutdown: %v", err)
	}
	_ = redisClient.Close()
	logrus.Info("Server stopped")
}
