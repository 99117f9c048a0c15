package main

import (
	"context"
	"flag"
	"os"

	"SecretQuery/internal/chain"
	"SecretQuery/internal/config"
	"SecretQuery/internal/logging"
	"SecretQuery/internal/services"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $CONFIG_PATH or configs/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	logger := logging.Build("connect", cfg)
	defer logger.Sync()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if err := cfg.RequireREST(); err != nil {
		logger.Fatal("config invalid", zap.Error(err))
	}

	connector := services.Connector{
		Chain:  chain.NewLCDClient(cfg.Chain.RESTURL),
		Out:    os.Stdout,
		Logger: logger,
	}
	if err := connector.Run(context.Background()); err != nil {
		logger.Fatal("connect failed", zap.String("endpoint", cfg.Chain.RESTURL), zap.Error(err))
	}
}
