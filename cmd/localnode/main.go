package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SecretQuery/internal/config"
	"SecretQuery/internal/localnode"
	"SecretQuery/internal/logging"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $CONFIG_PATH or configs/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	logger := logging.Build("localnode", cfg)
	defer logger.Sync()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	state, err := localnode.NewSeededState(cfg.LocalNode.ChainID, cfg.LocalNode.Height)
	if err != nil {
		logger.Fatal("state setup failed", zap.Error(err))
	}
	stream := localnode.NewBlockStream(state, cfg.LocalNode.BlockInterval, logger.With(zap.String("module", "ws")))
	srv := localnode.NewServer(localnode.NewHandler(state), stream, logger.With(zap.String("module", "server")))

	httpServer := &http.Server{
		Addr:              cfg.LocalNode.Addr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("localnode listening",
			zap.String("addr", cfg.LocalNode.Addr),
			zap.String("chain_id", state.ChainID()),
			zap.Int64("height", state.Height()),
			zap.Uint64s("code_ids", state.CodeIDs()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logger.Warn("shutdown failed", zap.Error(err))
	}
}
