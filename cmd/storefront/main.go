// Package main запускает HTTP-сервер магазина.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/vinayak-store/internal/assets"
	"github.com/mmeshcher/vinayak-store/internal/cart"
	"github.com/mmeshcher/vinayak-store/internal/catalog"
	"github.com/mmeshcher/vinayak-store/internal/config"
	"github.com/mmeshcher/vinayak-store/internal/events"
	"github.com/mmeshcher/vinayak-store/internal/handler"
	"github.com/mmeshcher/vinayak-store/internal/metrics"
	"github.com/mmeshcher/vinayak-store/internal/middleware"
	"github.com/mmeshcher/vinayak-store/internal/repository"
	"github.com/mmeshcher/vinayak-store/internal/service"
	"github.com/mmeshcher/vinayak-store/internal/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	carts, err := storage.OpenPebbleCarts(cfg.CartStorePath)
	if err != nil {
		sugar.Fatalw("cart store initialization error", "error", err.Error(), "path", cfg.CartStorePath)
	}
	defer carts.Close()

	reg := metrics.NewRegistry()
	sessions := cart.NewSessions(carts.ForDevice, logger, cart.WithObserver(reg))

	opts := []service.Option{service.WithMetrics(reg)}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		opts = append(opts, service.WithPublisher(events.NewKafkaPublisher(brokers, cfg.KafkaOrdersTopic)))
		sugar.Infow("publishing order events", "brokers", brokers, "topic", cfg.KafkaOrdersTopic)
	}
	if cfg.AssetUploadURL != "" {
		opts = append(opts, service.WithUploader(assets.NewClient(cfg.AssetUploadURL, cfg.AssetUploadPreset)))
	}

	svc := service.NewService(repo, catalog.NewCache(repo, cfg.CatalogCacheTTL), sessions, logger, opts...)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	if cfg.AuthSecret == "" {
		sugar.Warn("AUTH_SECRET is not set, sessions will not survive a restart")
	}
	h := handler.NewHandler(svc, logger, authMiddleware, reg.Handler())

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sessions.RunEviction(ctx, time.Minute, cfg.CartIdleTTL)
		return nil
	})

	g.Go(func() error {
		sugar.Infow("starting storefront server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
