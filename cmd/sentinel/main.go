package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ForexSentinel/internal/analysis"
	"ForexSentinel/internal/api"
	"ForexSentinel/internal/collector"
	"ForexSentinel/internal/config"
	"ForexSentinel/internal/history"
	"ForexSentinel/internal/notifier"
	"ForexSentinel/internal/recorder"
	"ForexSentinel/internal/scheduler"
)

func setupLogging(level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}
}

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	setupLogging(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("pair", cfg.Market.Pair).Str("timeframe", cfg.Market.Timeframe).Msg("ForexSentinel starting")

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Init fetcher
	var fetcher collector.Fetcher
	switch {
	case cfg.DataSource.Mock:
		fetcher = &collector.MockFetcher{}
	case cfg.DataSource.BaseURL != "":
		fetcher = collector.NewFeedFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")

	col := collector.NewCollector(fetcher, cfg.Market.Pair, cfg.Market.Timeframe, cfg.Market.Window)

	an := analysis.New(analysis.Options{
		Pair:       cfg.Market.Pair,
		Timeframe:  cfg.Market.Timeframe,
		Indicators: cfg.Indicators,
		Divergence: cfg.Divergence,
		Breakout:   cfg.Breakout,
		Confluence: cfg.Confluence,
		Composer:   cfg.Composer,
	})

	// Init history store
	var store history.Store
	if cfg.Redis.Addr != "" {
		rs, err := history.NewRedisStore(ctx, history.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			log.Warn().Err(err).Msg("init redis history failed, using state file")
		} else {
			store = rs
		}
	}
	if store == nil {
		if err := os.MkdirAll(filepath.Dir(cfg.History.StateFile), 0755); err != nil {
			log.Fatal().Err(err).Msg("create history dir")
		}
		store = history.NewFileStore(cfg.History.StateFile)
	}
	defer store.Close()

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0755); err != nil {
			log.Fatal().Err(err).Msg("create database dir")
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Init Telegram notifier; without a token messages are only logged.
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.Telegram.BotToken != "" {
		tn, err = notifier.NewTelegramNotifier(notifier.TelegramOptions{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			ProxyURL: cfg.Proxy,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("init telegram notifier")
		}
		sender = tn
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, an, sender, rec, store)
	if err := sched.RestoreHistory(); err != nil {
		log.Warn().Err(err).Msg("restore signal history")
	}
	if err := sched.RegisterAll(cfg.Schedule.AnalysisCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	var srv *api.Server
	if cfg.HTTP.Addr != "" {
		srv = api.NewServer(api.Config{
			Addr:         cfg.HTTP.Addr,
			AllowOrigins: cfg.HTTP.AllowOrigins,
			ReleaseMode:  cfg.Log.Level != "debug",
		}, sched, an)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	if cfg.Schedule.RunOnStart {
		log.Info().Msg("run_on_start enabled, executing analysis now")
		go sched.RunNow()
	}

	log.Info().Msg("ForexSentinel is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping...")
	if srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		cancelShutdown()
	}
	sched.Stop()
	log.Info().Msg("ForexSentinel stopped")
}
