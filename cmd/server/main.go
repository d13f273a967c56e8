package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedstream/internal/auth"
	"feedstream/internal/cache"
	"feedstream/internal/config"
	"feedstream/internal/database"
	"feedstream/internal/feed"
	"feedstream/internal/gateway"
	"feedstream/internal/handlers"
	"feedstream/internal/middleware"
	"feedstream/internal/social"
	"feedstream/internal/utils"

	"github.com/lmittmann/tint"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
	slog.SetDefault(logger)

	store, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			logger.Error("failed to disconnect from MongoDB", "error", err)
		}
	}()
	logger.Info("connected to MongoDB", "database", cfg.Database.Name)

	var feedCache cache.FeedCache
	if cfg.Cache.RedisAddr != "" {
		feedCache, err = cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.TTL)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		logger.Info("using Redis feed cache", "addr", cfg.Cache.RedisAddr)
	} else {
		feedCache = cache.NewMemoryCache(cfg.Cache.TTL)
		logger.Info("using in-memory feed cache")
	}
	defer feedCache.Close()

	authenticator := auth.NewAuthenticator(store, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
	builder := feed.NewBuilder(store, logger)
	resolver := social.NewResolver(store)
	gw := gateway.NewGateway(store, feedCache, builder, resolver, authenticator, logger)

	metrics := utils.NewMetricsCollector()
	server := handlers.NewServer(gw, metrics, logger)

	var handler http.Handler = server.Routes()
	handler = middleware.AuthMiddleware(authenticator, logger)(handler)
	handler = middleware.CORSMiddleware(nil)(handler)
	handler = middleware.RequestLogger(logger)(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
