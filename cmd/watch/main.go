package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"SecretQuery/internal/chain"
	"SecretQuery/internal/config"
	"SecretQuery/internal/logging"
	"SecretQuery/internal/services"

	"go.uber.org/zap"
)

type runner interface {
	Run(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $CONFIG_PATH or configs/config.yaml)")
	blocks := flag.Int("blocks", 0, "exit after this many blocks (0 runs until interrupted)")
	reconnect := flag.Duration("reconnect", 0, "reconnect delay after a dropped connection (0 exits instead)")
	poll := flag.Duration("poll", 0, "poll the REST endpoint at this interval instead of using the websocket")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	logger := logging.Build("watch", cfg)
	defer logger.Sync()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	var r runner
	if *poll > 0 {
		if err := cfg.RequireREST(); err != nil {
			logger.Fatal("config invalid", zap.Error(err))
		}
		r = services.HeightPoller{
			Chain:    chain.NewLCDClient(cfg.Chain.RESTURL),
			Out:      os.Stdout,
			Logger:   logger,
			Interval: *poll,
			Blocks:   *blocks,
		}
	} else {
		if err := cfg.RequireWS(); err != nil {
			logger.Fatal("config invalid", zap.Error(err))
		}
		r = services.HeightWatcher{
			Endpoint:       cfg.WSEndpoint(),
			Out:            os.Stdout,
			Logger:         logger,
			Blocks:         *blocks,
			ReconnectDelay: *reconnect,
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := r.Run(ctx); err != nil {
		logger.Fatal("watch failed", zap.Error(err))
	}
}
