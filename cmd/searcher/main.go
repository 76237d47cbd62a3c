package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/redis"
)

func main() {
	flagSet := pflag.NewFlagSet("searcher", pflag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "configs/development.yaml", "path to config file")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "data_dir", cfg.Index.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	variants := make([]index.Variant, 0, len(cfg.Index.Variants))
	for _, name := range cfg.Index.Variants {
		v, err := index.ParseVariant(name)
		if err != nil {
			slog.Error("invalid index variant", "error", err)
			os.Exit(1)
		}
		variants = append(variants, v)
	}
	defaultVariant, err := index.ParseVariant(cfg.Search.Variant)
	if err != nil {
		slog.Error("invalid search variant", "error", err)
		os.Exit(1)
	}

	registry := executor.NewRegistry(cfg.Index.DataDir, ranker.Params{K1: cfg.Search.K1, B: cfg.Search.B})
	if err := registry.Load(variants); err != nil {
		slog.Error("failed to load indexes", "error", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	checker := health.NewChecker()
	checker.Register("indexes", health.Ping(func(ctx context.Context) error {
		for _, v := range variants {
			if _, err := registry.Get(v); err != nil {
				return err
			}
		}
		return nil
	}))

	var queryCache *cache.QueryCache
	if cfg.Redis.Addr != "" {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			checker.Register("redis", health.Optional(redisClient.Ping))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.Corpus.Source == "postgres" {
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable", "error", err)
		} else {
			defer pg.Close()
			checker.Register("postgres", health.Optional(pg.Ping))
		}
	}

	var collector *analytics.Collector
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000, 100, 0)
		// Runs until Close so events from draining handlers are still flushed.
		collector.Start(context.WithoutCancel(ctx))
		defer collector.Close()
		slog.Info("query analytics enabled", "topic", cfg.Kafka.Topics.QueryEvents)

		onReload := func(ctx context.Context) {
			if queryCache == nil {
				return
			}
			if err := queryCache.Invalidate(ctx); err != nil {
				slog.Warn("cache invalidation after reload failed", "error", err)
			}
		}
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexBuilt,
			executor.ReloadHandler(registry, variants, onReload))
		go func() {
			if err := consumer.Run(ctx); err != nil {
				slog.Error("index reload consumer error", "error", err)
			}
		}()
		slog.Info("listening for index builds", "topic", cfg.Kafka.Topics.IndexBuilt, "group", cfg.Kafka.ConsumerGroup)
	}

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Port, map[string]http.Handler{
			"GET /health/ready": checker.ReadyHandler(),
		})
		go func() {
			slog.Info("metrics server listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", "error", err)
			}
		}()
		defer metricsServer.Close()
	}

	tok := indexer.NewTokenizer(cfg.Corpus)
	h := handler.New(registry, handler.Options{
		DefaultVariant: defaultVariant,
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxResults:     cfg.Search.MaxResults,
		Normalize:      tok.NormalizeQuery,
		Cache:          queryCache,
		Collector:      collector,
		Metrics:        m,
	})

	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if !cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Metrics(m),
			middleware.Timeout(cfg.Server.WriteTimeout),
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr, "variants", cfg.Index.Variants)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	// ListenAndServe returns before in-flight handlers finish; they may
	// still track analytics events until Shutdown returns.
	<-shutdownDone

	slog.Info("search service stopped")
}
