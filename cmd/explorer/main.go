package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mohammed-shakir/geodata-explorer/internal/api"
	"github.com/mohammed-shakir/geodata-explorer/internal/cache/redisstore"
	"github.com/mohammed-shakir/geodata-explorer/internal/cache/viewcache"
	"github.com/mohammed-shakir/geodata-explorer/internal/core/config"
	"github.com/mohammed-shakir/geodata-explorer/internal/core/health"
	"github.com/mohammed-shakir/geodata-explorer/internal/core/server"
	"github.com/mohammed-shakir/geodata-explorer/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/geodata-explorer/internal/logger"
	"github.com/mohammed-shakir/geodata-explorer/internal/metrics"
	"github.com/mohammed-shakir/geodata-explorer/internal/repository"
	"github.com/mohammed-shakir/geodata-explorer/internal/views"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	viewsFlag := flag.String("views", "", "path to the views YAML file (overrides VIEWS_FILE)")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *versionFlag {
		fmt.Println(Version)
		return 0
	}

	config.LoadDotenv()
	cfg := config.FromEnv()
	if *viewsFlag != "" {
		cfg.ViewsFile = *viewsFlag
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "geodata-explorer",
		Component: "main",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)
	slog.SetDefault(appLog)

	p := metrics.Init(metrics.Config{
		Enabled: cfg.Metrics.Enabled,
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})

	viewCfgs, err := config.LoadViews(cfg.ViewsFile)
	if err != nil {
		appLog.Error("load views", "err", err)
		return 1
	}
	if len(viewCfgs) == 0 {
		appLog.Warn("no views configured", "file", cfg.ViewsFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := repository.Open(startCtx, cfg.DatabaseURL, repository.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		appLog.Error("database unavailable", "err", err)
		return 1
	}
	defer func() { _ = db.Close() }()
	ready := map[string]health.Pinger{"db": db}

	var cache views.Cache
	var store *viewcache.Store
	if cfg.CacheEnabled {
		var backend viewcache.Backend
		if cfg.RedisAddr != "" {
			rc, err := redisstore.New(startCtx, cfg.RedisAddr)
			if err != nil {
				appLog.Error("redis unavailable", "addr", cfg.RedisAddr, "err", err)
				return 1
			}
			defer func() { _ = rc.Close() }()
			backend = rc
			ready["redis"] = rc
		}
		store = viewcache.New(viewcache.Config{
			Size:       cfg.CacheLRUSize,
			TTL:        cfg.CacheTTL,
			OpTimeout:  cfg.CacheOpTimeout,
			Dependents: views.Dependents(viewCfgs),
		}, backend)
		cache = store
	}

	svc := views.New(db, viewCfgs, cache, views.Options{H3Res: cfg.H3Res})

	var wg sync.WaitGroup
	if cfg.Invalidation.Enabled && store != nil {
		czl := logger.Build(logger.Config{
			Level:     cfg.LogLevel,
			Console:   cfg.LogConsole,
			Service:   "geodata-explorer",
			Component: "kafka_consumer",
		}, os.Stdout)
		consumer := kafkaconsumer.New(kafkaconsumer.Config{
			Brokers:             cfg.Invalidation.Brokers,
			Topic:               cfg.Invalidation.Topic,
			GroupID:             cfg.Invalidation.GroupID,
			InitialOffsetOldest: cfg.Invalidation.StartOldest,
			DedupeSize:          cfg.Invalidation.DedupeSize,
		}, store, &czl)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("invalidation consumer stopped", "err", err)
			}
		}()
	}

	appLog.Info("starting geodata explorer",
		"addr", cfg.Addr,
		"version", Version,
		"views", len(viewCfgs),
		"cache", cfg.CacheEnabled,
		"redis", cfg.RedisAddr != "",
		"invalidation", cfg.Invalidation.Enabled)

	metricsHandler := p.Handler()
	if !cfg.Metrics.Enabled {
		metricsHandler = nil
	}
	err = server.Run(ctx, cfg, appLog, server.Deps{
		API:     api.New(svc),
		Ready:   ready,
		Metrics: metricsHandler,
	})
	stop()
	wg.Wait()
	if err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
