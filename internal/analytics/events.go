package analytics

import "time"

type EventType string

const (
	EventQuery      EventType = "query"
	EventZeroResult EventType = "zero_result"
	EventIndexBuilt EventType = "index_built"
)

// QueryEvent is emitted by the search service for every answered query.
type QueryEvent struct {
	Type      EventType `json:"type"`
	Kind      string    `json:"kind"`
	Variant   string    `json:"variant"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Error     string    `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IndexBuiltEvent is emitted by the indexer after a variant is persisted.
// The search service reloads its indexes when it receives one.
type IndexBuiltEvent struct {
	Type       EventType `json:"type"`
	Variant    string    `json:"variant"`
	Terms      int       `json:"terms"`
	Postings   int       `json:"postings"`
	Documents  int       `json:"documents"`
	DurationMs int64     `json:"duration_ms"`
	DataDir    string    `json:"data_dir"`
	Timestamp  time.Time `json:"timestamp"`
}
