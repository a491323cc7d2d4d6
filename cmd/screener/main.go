package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vitos/crypto_screener/internal/config"
	"github.com/vitos/crypto_screener/internal/domain"
	"github.com/vitos/crypto_screener/internal/infrastructure/exchange"
	"github.com/vitos/crypto_screener/internal/infrastructure/logger"
	"github.com/vitos/crypto_screener/internal/infrastructure/marketdata"
	"github.com/vitos/crypto_screener/internal/infrastructure/storage"
	"github.com/vitos/crypto_screener/internal/report"
	"github.com/vitos/crypto_screener/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	if cfg.Storage.LegacyHistoryFile != "" {
		if err := store.ImportLegacyHistory(ctx, cfg.Storage.LegacyHistoryFile); err != nil {
			log.Warn("Failed to import legacy history", zap.Error(err))
		}
	}

	windowStart, windowEnd, err := cfg.Window()
	if err != nil {
		log.Fatal("Invalid historical window", zap.Error(err))
	}

	binance := exchange.NewBinanceAdapter(cfg.Exchange.RESTEndpoint)
	gecko := marketdata.NewCoinGeckoAdapter(cfg.Reference.CoinGeckoEndpoint, cfg.Reference.CoinGeckoPages, log)
	cmc := marketdata.NewCoinMarketCapAdapter(cfg.Reference.CoinMarketCapEndpoint, cfg.Reference.CMCAPIKey,
		cfg.Reference.CoinMarketCapLimit, log)

	tierer := &usecase.Tierer{
		Tiers:  domain.DefaultTiers(),
		MinFDV: cfg.Screener.MinFDVUSD,
		Change: usecase.Change24hPolicy{ZeroMeansMissing: cfg.Change24hZeroFallbackEnabled()},
	}
	calc := usecase.NewLowBounceCalculator(binance, windowStart, windowEnd, log)

	svc := usecase.NewScreenerService(binance, gecko, cmc, tierer, calc, store, store, log)

	result, err := svc.Run(ctx)
	if err != nil {
		log.Fatal("Screener run failed", zap.Error(err))
	}

	rep := report.Assemble(result, tierer.Tiers)
	report.WriteTable(os.Stdout, rep)

	if cfg.Report.DataFile != "" {
		f, err := os.Create(cfg.Report.DataFile)
		if err != nil {
			log.Error("Failed to create report data file", zap.Error(err))
			return
		}
		defer f.Close()
		if err := report.WriteDataJS(f, rep); err != nil {
			log.Error("Failed to write report data file", zap.Error(err))
			return
		}
		log.Info("Report data written", zap.String("path", cfg.Report.DataFile))
	}
}
