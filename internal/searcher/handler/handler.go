// Package handler exposes the query engine over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/middleware"
)

type Options struct {
	DefaultVariant index.Variant
	DefaultLimit   int
	MaxResults     int
	// Normalize must match the tokenizer the indexes were built with.
	Normalize func(string) []string
	Cache     *cache.QueryCache
	Collector *analytics.Collector
	Metrics   *metrics.Metrics
}

type Handler struct {
	registry *executor.Registry
	opts     Options
	logger   *slog.Logger
}

func New(registry *executor.Registry, opts Options) *Handler {
	if opts.DefaultVariant == 0 {
		opts.DefaultVariant = index.SPIMI
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = executor.DefaultLimit
	}
	if opts.MaxResults < opts.DefaultLimit {
		opts.MaxResults = opts.DefaultLimit
	}
	return &Handler{
		registry: registry,
		opts:     opts,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Routes registers the API on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/postings", h.Postings)
	mux.HandleFunc("GET /api/v1/indexes", h.Indexes)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// Search answers GET /api/v1/search?q=&mode=&index=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)
	q := r.URL.Query()

	raw := q.Get("q")
	if raw == "" {
		h.writeError(w, apperrors.New(apperrors.ErrEmptyQuery, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	kind, err := parser.ParseKind(q.Get("mode"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	variant, err := h.variant(q.Get("index"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	limit, err := h.limit(q.Get("limit"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	plan, err := parser.Parse(kind, raw, h.opts.Normalize)
	if err != nil {
		h.record(kind, "error", start, 0)
		h.writeError(w, err)
		return
	}
	exec, err := h.registry.Get(variant)
	if err != nil {
		h.record(plan.Kind, "error", start, 0)
		h.writeError(w, err)
		return
	}

	compute := func() (*executor.SearchResult, error) { return exec.Execute(plan, limit) }
	var (
		result   *executor.SearchResult
		cacheHit bool
	)
	if h.opts.Cache != nil {
		result, cacheHit, err = h.opts.Cache.GetOrCompute(ctx, cache.Key(plan, variant.String(), limit), compute)
	} else {
		result, err = compute()
	}

	latency := time.Since(start)
	if err != nil {
		outcome := "error"
		if apperrors.HTTPStatusCode(err) == http.StatusNotFound {
			outcome = "not_found"
		}
		h.record(plan.Kind, outcome, start, 0)
		h.track(r, plan, variant, 0, latency, false, err)
		log.Info("search failed", "query", raw, "kind", plan.Kind, "variant", variant, "error", err)
		h.writeError(w, err)
		return
	}

	h.record(plan.Kind, "ok", start, len(result.Hits))
	h.track(r, plan, variant, len(result.Hits), latency, cacheHit, nil)
	log.Info("search completed",
		"query", raw,
		"kind", plan.Kind,
		"variant", variant,
		"total", result.Total,
		"returned", len(result.Hits),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

// Postings answers GET /api/v1/postings?term= with the SPIMI postings of
// one normalized term, including frequencies.
func (h *Handler) Postings(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("term"))
	terms := []string{raw}
	if h.opts.Normalize != nil {
		terms = h.opts.Normalize(raw)
	}
	if len(terms) == 0 || terms[0] == "" {
		h.writeError(w, apperrors.New(apperrors.ErrEmptyQuery, http.StatusBadRequest, "query parameter 'term' is required"))
		return
	}
	if len(terms) > 1 {
		h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"term %q normalizes to %d terms", raw, len(terms)))
		return
	}
	term := terms[0]
	exec, err := h.registry.Get(index.SPIMI)
	if err != nil {
		h.writeError(w, err)
		return
	}
	postings, err := exec.LookupPostings(term)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"term":     term,
		"df":       len(postings),
		"postings": postings,
	})
}

// Indexes reports which variants are loaded and when.
func (h *Handler) Indexes(w http.ResponseWriter, r *http.Request) {
	type indexInfo struct {
		Variant   string `json:"variant"`
		Terms     int    `json:"terms"`
		Postings  int    `json:"postings"`
		Documents int    `json:"documents"`
	}
	infos := []indexInfo{}
	for _, v := range h.registry.Loaded() {
		exec, err := h.registry.Get(v)
		if err != nil {
			continue
		}
		idx := exec.Index()
		infos = append(infos, indexInfo{
			Variant:   v.String(),
			Terms:     len(idx.Terms()),
			Postings:  idx.Size(),
			Documents: len(idx.Documents()),
		})
	}
	body := map[string]any{"indexes": infos}
	if stats := h.registry.Stats(); stats != nil {
		body["documents"] = stats.N()
		body["avg_doc_length"] = stats.AvgDocLength
	}
	if at := h.registry.LoadedAt(); !at.IsZero() {
		body["loaded_at"] = at.UTC()
	}
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.opts.Cache.Stats()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"hit_rate": hitRate,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	if err := h.opts.Cache.Invalidate(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) variant(s string) (index.Variant, error) {
	if s == "" {
		return h.opts.DefaultVariant, nil
	}
	v, err := index.ParseVariant(s)
	if err != nil {
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "unknown index %q", s)
	}
	return v, nil
}

func (h *Handler) limit(s string) (int, error) {
	if s == "" {
		return h.opts.DefaultLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer")
	}
	return min(n, h.opts.MaxResults), nil
}

func (h *Handler) record(kind parser.Kind, outcome string, start time.Time, returned int) {
	if h.opts.Metrics == nil {
		return
	}
	label := kind.String()
	if kind == 0 {
		label = "unknown"
	}
	h.opts.Metrics.QueriesTotal.WithLabelValues(label, outcome).Inc()
	h.opts.Metrics.QueryLatency.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if outcome == "ok" {
		h.opts.Metrics.QueryResultsCount.WithLabelValues(label).Observe(float64(returned))
	}
}

func (h *Handler) track(r *http.Request, plan *parser.QueryPlan, v index.Variant, returned int, latency time.Duration, cacheHit bool, err error) {
	if h.opts.Collector == nil {
		return
	}
	ev := analytics.QueryEvent{
		Type:      analytics.EventQuery,
		Kind:      plan.Kind.String(),
		Variant:   v.String(),
		Query:     plan.Raw,
		Terms:     plan.Terms,
		Returned:  returned,
		LatencyMs: latency.Milliseconds(),
		CacheHit:  cacheHit,
		RequestID: middleware.GetRequestID(r),
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if returned == 0 {
		ev.Type = analytics.EventZeroResult
	}
	h.opts.Collector.TrackQuery(ev)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		message = "internal error"
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
