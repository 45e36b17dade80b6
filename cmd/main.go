package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opencircle/social-service/config"
	"github.com/opencircle/social-service/internal/ai"
	"github.com/opencircle/social-service/internal/bus"
	"github.com/opencircle/social-service/internal/cache"
	"github.com/opencircle/social-service/internal/pg"
	"github.com/opencircle/social-service/internal/postgres"
	"github.com/opencircle/social-service/internal/presence"
	"github.com/opencircle/social-service/internal/security"
	"github.com/opencircle/social-service/internal/service"
	httpx "github.com/opencircle/social-service/internal/transport/http"
	"github.com/opencircle/social-service/internal/transport/ws"
	"github.com/opencircle/social-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting social-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	pool, err := pg.NewPool(ctx, pg.Config{
		DSN:             cfg.Postgres.DSN,
		ApplicationName: cfg.Logging.Service,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// --- cache ---
	var store cache.Cache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rc.Close()
		store = rc
	} else {
		mem := cache.NewMemory()
		defer mem.Close()
		store = mem
	}

	// --- repos ---
	chatRepo := postgres.NewChatRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	postRepo := postgres.NewPostRepository(pool)
	followRepo := postgres.NewFollowRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	// --- realtime plumbing ---
	b := bus.New()
	registry := presence.NewRegistry()
	dispatcher := service.NewDispatcher(b)
	tasks := service.NewTasks(cfg.Workers.QueueSize, cfg.Workers.Count)
	defer tasks.Close()

	// --- services ---
	chatSvc := service.NewChatService(chatRepo, messageRepo, userRepo, notificationRepo, registry, dispatcher, tasks)
	chatSvc.SetMaxMessageLen(cfg.Chat.MaxMessageLen)
	if cfg.AI.APIKey != "" {
		chatSvc.SetResponder(ai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model), cfg.AI.BotUsername)
	}
	feedSvc := service.NewFeedService(followRepo, postRepo, store)
	followSvc := service.NewFollowService(followRepo, notificationRepo, dispatcher, store)
	notifSvc := service.NewNotificationService(notificationRepo, store)

	// --- transport ---
	verifier := security.NewJWTVerifier(cfg.Auth.JWTSecret)
	wsServer := ws.NewServer(b, registry, chatSvc, verifier)
	handler := httpx.NewHandler(chatSvc, feedSvc, notifSvc, followSvc)
	router := httpx.NewRouter(handler, wsServer, verifier, cfg.HTTP.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
