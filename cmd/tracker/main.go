package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pricetracker/internal/client/polymarket/clob"
	"pricetracker/internal/config"
	cronrunner "pricetracker/internal/cron"
	"pricetracker/internal/db"
	"pricetracker/internal/logger"
	gormrepository "pricetracker/internal/repository/gorm"
	"pricetracker/internal/service"
)

func main() {
	once := flag.Bool("once", false, "run a single collection pass and exit")
	flag.Parse()

	cfgPath := os.Getenv("PT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("PT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		db.Close(dbConn)
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	clobHTTP := &http.Client{Timeout: cfg.ClobREST.Timeout}
	quotes := clob.NewClient(clobHTTP, cfg.ClobREST.BaseURL, cfg.ClobREST.RateLimitCooldown)
	store := gormrepository.New(dbConn.Gorm)

	liveness := &service.LivenessService{
		Repo:   store,
		Logger: logger,
		Config: cfg.Liveness,
	}
	rpm := cfg.Collector.RequestsPerMinute
	if rpm <= 0 {
		rpm = 90
	}
	collector := &service.CollectorService{
		Repo:            store,
		Liveness:        liveness,
		Quotes:          quotes,
		Logger:          logger,
		RequestInterval: time.Minute / time.Duration(rpm),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		summary, err := collector.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("one-shot run failed", zap.Error(err))
			db.Close(dbConn)
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("one-shot run complete",
			zap.Int("games", summary.GamesProcessed),
			zap.Int64("stored", summary.Stored),
		)
		return
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled && cfg.Retention.Enabled {
		retention := &service.RetentionService{
			Repo:   store,
			Logger: logger,
			MaxAge: cfg.Retention.MaxAge,
		}
		if _, err := cronRunner.Add(cfg.Cron.Retention, func(ctx context.Context) {
			if err := retention.Prune(ctx); err != nil {
				logger.Warn("retention prune failed", zap.Error(err))
			}
		}); err != nil {
			db.Close(dbConn)
			logger.Fatal("cron add failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	scheduler := &service.Scheduler{
		Collector: collector,
		Liveness:  liveness,
		Logger:    logger,
		Config:    cfg.Scheduler,
	}
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler stopped", zap.Error(err))
		cronRunner.Stop()
		db.Close(dbConn)
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
