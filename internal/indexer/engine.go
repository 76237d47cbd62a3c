// Package indexer builds every configured index variant from a document
// store, persists the results with corpus statistics, and announces each
// finished variant.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/metrics"
)

// Notifier receives an event after each variant is persisted. It is
// satisfied by *analytics.IndexNotifier.
type Notifier interface {
	IndexBuilt(ctx context.Context, ev analytics.IndexBuiltEvent) error
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithProgress registers fn to be called after each build step with a
// short description.
func WithProgress(fn func(step string)) Option {
	return func(e *Engine) { e.progress = fn }
}

type Engine struct {
	dataDir  string
	variants []index.Variant
	workers  int
	writer   *segment.Writer
	metrics  *metrics.Metrics
	notifier Notifier
	progress func(string)
	logger   *slog.Logger
}

func NewEngine(cfg config.IndexConfig, opts ...Option) (*Engine, error) {
	variants := make([]index.Variant, 0, len(cfg.Variants))
	for _, name := range cfg.Variants {
		v, err := index.ParseVariant(name)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	e := &Engine{
		dataDir:  cfg.DataDir,
		variants: variants,
		workers:  cfg.Workers,
		writer:   segment.NewWriter(cfg.DataDir),
		progress: func(string) {},
		logger:   slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Steps is the number of progress callbacks a Build makes.
func (e *Engine) Steps() int {
	return 1 + len(e.variants)
}

// Report summarizes one built variant.
type Report struct {
	Variant   index.Variant
	Path      string
	Terms     int
	Postings  int
	Documents int
	Duration  time.Duration
}

type Result struct {
	Stats   *corpus.Stats
	Indexes map[index.Variant]index.Index
	Reports []Report
}

// Build computes statistics once, then builds and persists each variant in
// configuration order. Notifications go out only once every variant and the
// statistics are on disk, so a reloading searcher never pairs new
// statistics with an old index. A failed notification is logged and does
// not fail the build.
func (e *Engine) Build(ctx context.Context, store corpus.Store) (*Result, error) {
	docs := store.Documents()
	stats := corpus.ComputeStats(docs)
	if err := e.writer.WriteStats(stats); err != nil {
		return nil, fmt.Errorf("persisting corpus statistics: %w", err)
	}
	e.logger.Info("corpus statistics written",
		"documents", stats.N(),
		"avg_doc_length", stats.AvgDocLength,
	)
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Add(float64(len(docs)))
	}
	e.progress("statistics")

	result := &Result{Stats: stats, Indexes: make(map[index.Variant]index.Index, len(e.variants))}
	for _, v := range e.variants {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build cancelled before %s: %w", v, err)
		}
		start := time.Now()
		idx, err := index.Build(v, docs, e.workers)
		if err != nil {
			return nil, fmt.Errorf("building %s index: %w", v, err)
		}
		path, err := e.writer.WriteIndex(idx)
		if err != nil {
			return nil, fmt.Errorf("persisting %s index: %w", v, err)
		}
		rep := Report{
			Variant:   v,
			Path:      path,
			Terms:     len(idx.Terms()),
			Postings:  idx.Size(),
			Documents: len(idx.Documents()),
			Duration:  time.Since(start),
		}
		result.Indexes[v] = idx
		result.Reports = append(result.Reports, rep)

		e.logger.Info("index built",
			"variant", v.String(),
			"terms", rep.Terms,
			"postings", rep.Postings,
			"documents", rep.Documents,
			"duration", rep.Duration,
			"path", path,
		)
		e.observe(rep)
		e.progress(v.String())
	}
	for _, rep := range result.Reports {
		e.notify(ctx, rep)
	}
	return result, nil
}

func (e *Engine) observe(rep Report) {
	if e.metrics == nil {
		return
	}
	label := rep.Variant.String()
	e.metrics.IndexBuildDuration.WithLabelValues(label).Observe(rep.Duration.Seconds())
	e.metrics.IndexTerms.WithLabelValues(label).Set(float64(rep.Terms))
	e.metrics.IndexPostings.WithLabelValues(label).Set(float64(rep.Postings))
}

func (e *Engine) notify(ctx context.Context, rep Report) {
	if e.notifier == nil {
		return
	}
	err := e.notifier.IndexBuilt(ctx, analytics.IndexBuiltEvent{
		Variant:    rep.Variant.String(),
		Terms:      rep.Terms,
		Postings:   rep.Postings,
		Documents:  rep.Documents,
		DurationMs: rep.Duration.Milliseconds(),
		DataDir:    e.dataDir,
	})
	if err != nil {
		e.logger.Warn("index built notification failed", "variant", rep.Variant.String(), "error", err)
	}
}
