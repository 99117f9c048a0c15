package main

import (
	"context"
	"flag"
	"os"

	"SecretQuery/internal/chain"
	"SecretQuery/internal/config"
	"SecretQuery/internal/enigma"
	"SecretQuery/internal/logging"
	"SecretQuery/internal/models"
	"SecretQuery/internal/services"
	"SecretQuery/internal/wallet"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $CONFIG_PATH or configs/config.yaml)")
	codeID := flag.Uint64("code-id", 0, "code id to list contracts for (default contracts.code_id)")
	contract := flag.String("contract", "", "alias registry to search (default: first listed contract)")
	searchType := flag.String("search-type", "", "alias registry search type: alias or address")
	searchValue := flag.String("search-value", "", "value to search for")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	logger := logging.Build("querycontracts", cfg)
	defer logger.Sync()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if err := cfg.RequireREST(); err != nil {
		logger.Fatal("config invalid", zap.Error(err))
	}
	if err := cfg.RequireWallet(); err != nil {
		logger.Fatal("config invalid", zap.Error(err))
	}
	if *codeID == 0 {
		*codeID = cfg.Contracts.CodeID
	}

	w, err := wallet.FromMnemonic(cfg.Wallet.Mnemonic, cfg.Chain.Bech32Prefix)
	if err != nil {
		logger.Fatal("wallet setup failed", zap.Error(err))
	}
	seed, err := enigma.GenerateSeed()
	if err != nil {
		logger.Fatal("encryption seed failed", zap.Error(err))
	}
	lcd := chain.NewLCDClient(cfg.Chain.RESTURL)
	enc, err := enigma.New(seed, lcd)
	if err != nil {
		logger.Fatal("encryption setup failed", zap.Error(err))
	}
	client, err := chain.NewSigningClient(lcd, w, enc, cfg.Fees)
	if err != nil {
		logger.Fatal("client setup failed", zap.Error(err))
	}

	runner := services.ContractQueryRunner{
		Client: client,
		Out:    os.Stdout,
		Logger: logger,
		CodeID: *codeID,
	}
	if *searchType != "" {
		runner.Search = &services.AliasSearch{
			Contract: *contract,
			Params:   models.SearchParams{SearchType: *searchType, SearchValue: *searchValue},
		}
	}
	if err := runner.Run(context.Background()); err != nil {
		logger.Fatal("contract query failed", zap.Uint64("code_id", *codeID), zap.Error(err))
	}
}
