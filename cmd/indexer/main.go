package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "indexer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		source     string
		pattern    string
		dataDir    string
		variants   []string
		seed       bool
		noProgress bool
	)
	flagSet := pflag.NewFlagSet("indexer", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "configs/development.yaml", "path to config file")
	flagSet.StringVar(&source, "source", "", "document source: reuters or postgres (overrides config)")
	flagSet.StringVar(&pattern, "pattern", "", "glob of Reuters .sgm files (overrides config)")
	flagSet.StringVar(&dataDir, "data-dir", "", "directory for index files (overrides config)")
	flagSet.StringSliceVar(&variants, "variants", nil, "index variants to build (overrides config)")
	flagSet.BoolVar(&seed, "seed-postgres", false, "copy the Reuters archive into Postgres and exit")
	flagSet.BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if source != "" {
		cfg.Corpus.Source = source
	}
	if pattern != "" {
		cfg.Corpus.Pattern = pattern
	}
	if dataDir != "" {
		cfg.Index.DataDir = dataDir
	}
	if len(variants) > 0 {
		cfg.Index.Variants = variants
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if seed {
		n, err := indexer.SeedPostgres(ctx, cfg)
		if err != nil {
			return fmt.Errorf("seeding postgres: %w", err)
		}
		slog.Info("postgres seeded", "table", cfg.Corpus.Table, "articles", n)
		return nil
	}

	slog.Info("starting indexer",
		"source", cfg.Corpus.Source,
		"variants", cfg.Index.Variants,
		"data_dir", cfg.Index.DataDir,
	)

	var opts []indexer.Option
	if cfg.Metrics.Enabled {
		m := metrics.New(prometheus.DefaultRegisterer)
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
		opts = append(opts, indexer.WithMetrics(m))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexBuilt)
		defer producer.Close()
		opts = append(opts, indexer.WithNotifier(analytics.NewIndexNotifier(producer)))
	}

	var bar *progressbar.ProgressBar
	if !noProgress {
		// one step for loading the corpus plus the engine's own steps
		bar = progressbar.NewOptions(len(cfg.Index.Variants)+2,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(20),
			progressbar.OptionSetDescription("[cyan]loading corpus...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		opts = append(opts, indexer.WithProgress(func(step string) {
			bar.Describe(fmt.Sprintf("[cyan]%s done[reset]", step))
			_ = bar.Add(1)
		}))
	}

	engine, err := indexer.NewEngine(cfg.Index, opts...)
	if err != nil {
		return err
	}

	store, err := indexer.LoadCorpus(ctx, cfg, indexer.NewTokenizer(cfg.Corpus))
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	if bar != nil {
		bar.Describe("[cyan]building indexes...[reset]")
		_ = bar.Add(1)
	}

	result, err := engine.Build(ctx, store)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	if cfg.Redis.Addr != "" {
		invalidateCache(ctx, cfg.Redis)
	}

	for _, rep := range result.Reports {
		fmt.Printf("%-6s terms=%d postings=%d documents=%d took=%s path=%s\n",
			rep.Variant, rep.Terms, rep.Postings, rep.Documents, rep.Duration.Round(time.Millisecond), rep.Path)
	}
	fmt.Printf("documents=%d avg_doc_length=%.2f\n", result.Stats.N(), result.Stats.AvgDocLength)
	return nil
}

// invalidateCache drops cached search results computed against the
// previous indexes. Failure only leaves stale entries until their TTL.
func invalidateCache(ctx context.Context, cfg config.RedisConfig) {
	client, err := pkgredis.NewClient(ctx, cfg)
	if err != nil {
		slog.Warn("redis unavailable, cached results not invalidated", "error", err)
		return
	}
	defer client.Close()
	if err := cache.New(client, cfg.CacheTTL, nil).Invalidate(ctx); err != nil {
		slog.Warn("cache invalidation failed", "error", err)
	}
}
