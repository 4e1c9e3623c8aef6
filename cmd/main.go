package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hostelfix/backend/internal/api"
	"hostelfix/backend/internal/api/handler"
	"hostelfix/backend/internal/auth"
	"hostelfix/backend/internal/bootstrap"
	"hostelfix/backend/internal/complaint"
	"hostelfix/backend/internal/config"
	"hostelfix/backend/internal/feed"
	"hostelfix/backend/internal/logging"
	"hostelfix/backend/internal/metrics"
	"hostelfix/backend/internal/ratelimit"
	"hostelfix/backend/internal/telegram"
)

func main() {
	cfg, found, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if !found {
		logger.Warn("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting HostelFix backend", "env", cfg.AppEnv, "storage", cfg.StorageDriver)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Сховища
	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg, logger)
	if err != nil {
		if cfg.IsProduction() {
			return err
		}
		logger.Warn("redis unavailable, continuing without it", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	files, err := bootstrap.OpenUploads(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// 2. Події
	hub := feed.NewHub(logger)
	var pubsub feed.PubSub
	if rdb != nil {
		pubsub = rdb
	}
	broker := feed.NewBroker(pubsub, hub, logger)
	m := metrics.New()
	m.RegisterFeedClients(hub.Clients)

	publishers := []complaint.Publisher{broker, m}
	var notifier *telegram.Notifier
	if cfg.Telegram.Enabled() {
		notifier, err = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Lang, logger)
		if err != nil {
			logger.Warn("telegram notifications disabled", "error", err)
		} else {
			publishers = append(publishers, notifier)
		}
	}

	// 3. Сервіси
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := auth.NewService(store, tokens, auth.BcryptHasher{}, files, logger)
	complaintSvc := complaint.NewService(store, store, files, complaint.Options{
		StrictScope: cfg.StrictScope,
		PurgePhotos: cfg.PurgeOnDelete,
	}, logger, publishers...)

	h := handler.NewHandler(handler.Deps{
		Auth:        authSvc,
		Complaints:  complaintSvc,
		Uploads:     files,
		Hub:         hub,
		Store:       store,
		Env:         cfg.AppEnv,
		StorageName: cfg.StorageDriver,
		Logger:      logger,
	})

	var limiter *ratelimit.Limiter
	if cfg.RateLimitEnabled() {
		if rdb != nil {
			limiter = ratelimit.New(rdb, cfg.Limit.Requests, cfg.Limit.Window, logger)
		} else {
			logger.Warn("rate limiting requested but redis is not configured")
		}
	}

	router := api.NewRouter(api.Options{
		Handler:     h,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
		Metrics:     m,
	})

	// 4. Фонові горутини
	go hub.Run(ctx)
	go func() {
		if err := broker.Listen(ctx); err != nil {
			logger.Error("complaint event listener stopped", "error", err)
		}
	}()
	if notifier != nil {
		go notifier.Run(ctx)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
