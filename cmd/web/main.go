package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pycsa-web/internal/baas"
	"pycsa-web/internal/config"
	"pycsa-web/internal/logger"
	"pycsa-web/internal/mailer"
	"pycsa-web/internal/media"
	"pycsa-web/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(webServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight requests get 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := webServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := webServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func imageStore(ctx context.Context, cfg *config.Config, client *baas.Client, log *zap.Logger) (media.ObjectStore, error) {
	if cfg.Storage.Backend != "s3" {
		return media.NewBaaSStore(client, cfg.Storage.Bucket), nil
	}
	return media.NewS3Store(ctx, media.S3Options{
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.S3.Region,
		Endpoint:        cfg.Storage.S3.Endpoint,
		AccessKeyID:     cfg.Storage.S3.AccessKeyID,
		SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicURL,
	}, log)
}

// connectRedis returns nil when Redis is not configured or unreachable;
// submissions are then not rate limited.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if !cfg.Enabled() {
		log.Info("Redis not configured, rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogFile)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting PYCSA web",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("email", cfg.Email.Provider),
	)

	ctx := context.Background()

	if cfg.Session.Secret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatal("Failed to generate session secret", zap.Error(err))
		}
		cfg.Session.Secret = hex.EncodeToString(secret)
		log.Warn("SESSION_SECRET not set, admin sessions will not survive a restart")
	}

	client := baas.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.HTTPTimeout, log)

	store, err := imageStore(ctx, cfg, client, log)
	if err != nil {
		log.Fatal("Failed to configure image storage", zap.Error(err))
	}

	sender, err := mailer.New(cfg.Email, log)
	if err != nil {
		log.Fatal("Failed to configure email", zap.Error(err))
	}

	srv, err := server.NewServer(cfg, log, server.Deps{
		BaaS:   client,
		Images: media.NewManager(store, cfg.Storage.Bucket, log),
		Mailer: sender,
		Redis:  connectRedis(ctx, cfg.Redis, log),
	})
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
