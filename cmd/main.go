/*
Package main is the entry point for the roomchat server.

It loads configuration, initializes the global logger, selects the room and user
stores, wires the optional Redis and Google integrations, and serves HTTP until
SIGINT or SIGTERM triggers a graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"roomchat/internal/app/db"
	"roomchat/internal/app/identity"
	"roomchat/internal/app/memstore"
	"roomchat/internal/app/oauthstate"
	"roomchat/internal/app/presence"
	"roomchat/internal/app/room"
	"roomchat/internal/app/user"
	"roomchat/internal/configs"
	"roomchat/internal/handler"
	"roomchat/internal/pkg/logx"
)

const redisKeyPrefix = "roomchat:"

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("store_driver", cfg.StoreDriver).
		Bool("redis", cfg.RedisURL != "").
		Bool("google_sign_in", cfg.GoogleEnabled()).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		roomStore room.Store
		userStore user.Store
	)
	switch cfg.StoreDriver {
	case configs.StoreDriverMemory:
		mem := memstore.New()
		roomStore, userStore = mem, mem
		logx.Warn("Using in-memory store; data is lost on restart.")
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to connect to database")
		}
		defer pool.Close()
		roomStore, userStore = db.NewRoomStore(pool), db.NewUserStore(pool)
	}

	var (
		states    oauthstate.Store   = oauthstate.NewMemoryStore(ctx, cfg.OAuthStateTTL)
		publisher presence.Publisher = presence.Nop{}
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logx.Fatal(err, "Invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			logx.Fatal(err, "Failed to connect to Redis")
		}
		states = oauthstate.NewRedisStore(client, cfg.OAuthStateTTL, redisKeyPrefix)
		publisher = presence.NewRedisPublisher(client, redisKeyPrefix)
	}

	deps := &handler.AppDeps{
		Config: cfg,
		Rooms: room.NewService(roomStore, identity.SessionResolver{},
			room.WithPublisher(publisher),
			room.WithStoreTimeout(cfg.StoreTimeout),
		),
		Users:       user.NewService(userStore),
		OAuthStates: states,
	}
	if cfg.GoogleEnabled() {
		deps.Google = identity.NewGoogleOAuth(identity.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info("roomchat server starting", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
