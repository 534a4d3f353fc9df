package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"coinprices-service/internal/bootstrap"
	"coinprices-service/internal/config"
	infraconfig "coinprices-service/internal/infrastructure/config"
	httpserver "coinprices-service/internal/infrastructure/http"
	"coinprices-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config.load", zap.Error(err))
	}
	addr := ":" + cfg.Port

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queries, ready, cleanup, err := bootstrap.BuildQueryService(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap.query_service", zap.Error(err))
	}
	defer cleanup()

	srv := httpserver.NewServer(queries)
	srv.SetReadyCheck(ready)

	server := &http.Server{
		Addr:              addr,
		Handler:           httpserver.NewRouter(srv),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.started", zap.String("addr", addr), zap.String("output_dir", cfg.OutputDir))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("server.listen", zap.Error(err))
			return
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server.shutdown", zap.Error(err))
	}
	logger.Info("server.stopped")
}
