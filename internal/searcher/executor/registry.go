package executor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
)

type snapshot struct {
	executors map[index.Variant]*Executor
	loadedAt  time.Time
}

// Registry holds one Executor per loaded variant and swaps them atomically
// on reload, so in-flight queries finish on the index they started with.
type Registry struct {
	reader  *segment.Reader
	params  ranker.Params
	current atomic.Pointer[snapshot]
	logger  *slog.Logger
}

func NewRegistry(dataDir string, params ranker.Params) *Registry {
	r := &Registry{
		reader: segment.NewReader(dataDir),
		params: params,
		logger: slog.Default().With("component", "index-registry"),
	}
	r.current.Store(&snapshot{executors: map[index.Variant]*Executor{}})
	return r
}

// Load reads variants and the corpus statistics from disk and replaces
// the current set. Missing statistics are tolerated: boolean queries still
// work and BM25 reports ErrMissingStatistics. Nothing is replaced if any
// variant fails to load.
func (r *Registry) Load(variants []index.Variant) error {
	stats, err := r.reader.ReadStats()
	if err != nil {
		if !errors.Is(err, apperrors.ErrMissingStatistics) {
			return fmt.Errorf("loading corpus statistics: %w", err)
		}
		r.logger.Warn("corpus statistics not found, bm25 disabled", "error", err)
		stats = nil
	}

	next := &snapshot{executors: make(map[index.Variant]*Executor, len(variants)), loadedAt: time.Now()}
	for _, v := range variants {
		start := time.Now()
		idx, err := r.reader.ReadIndex(v)
		if err != nil {
			return fmt.Errorf("loading %s index: %w", v, err)
		}
		next.executors[v] = New(idx, stats, r.params)
		r.logger.Info("index loaded",
			"variant", v.String(),
			"terms", len(idx.Terms()),
			"postings", idx.Size(),
			"duration", time.Since(start),
		)
	}
	r.current.Store(next)
	return nil
}

// Set installs prebuilt executors, replacing whatever was loaded.
func (r *Registry) Set(executors map[index.Variant]*Executor) {
	r.current.Store(&snapshot{executors: executors, loadedAt: time.Now()})
}

// Get returns the executor for v or ErrIndexNotLoaded.
func (r *Registry) Get(v index.Variant) (*Executor, error) {
	e, ok := r.current.Load().executors[v]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrIndexNotLoaded, v)
	}
	return e, nil
}

// Loaded lists the available variants in canonical order.
func (r *Registry) Loaded() []index.Variant {
	snap := r.current.Load()
	var out []index.Variant
	for _, v := range index.Variants {
		if _, ok := snap.executors[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (r *Registry) LoadedAt() time.Time {
	return r.current.Load().loadedAt
}

// Stats returns the statistics shared by the loaded executors, or nil.
func (r *Registry) Stats() *corpus.Stats {
	for _, e := range r.current.Load().executors {
		return e.stats
	}
	return nil
}
