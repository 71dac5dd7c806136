// Package main is the entry point for the objbench HTTP converter.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/objbench/internal/config"
	"github.com/Faultbox/objbench/internal/history"
	"github.com/Faultbox/objbench/internal/logger"
	"github.com/Faultbox/objbench/internal/server"
	"github.com/Faultbox/objbench/internal/service"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.JSON)
	defer logger.Sync()

	logger.Info("=== objbench converter ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	store := history.NewMemStore(cfg.History.Capacity)
	svc := service.New(cfg, store, logger.Named("service"))
	srv := server.New(cfg, svc, store, logger.Named("http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}
