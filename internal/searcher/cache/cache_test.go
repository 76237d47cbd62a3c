package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/parser"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: make(map[string]string)} }

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(value.([]byte))
	return nil
}

func (m *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func plan(t *testing.T, kind parser.Kind, raw string) *parser.QueryPlan {
	t.Helper()
	p, err := parser.Parse(kind, raw, nil)
	require.NoError(t, err)
	return p
}

func TestKey(t *testing.T) {
	a := Key(plan(t, parser.And, "cat AND ran"), "spimi", 10)
	assert.Equal(t, a, Key(plan(t, parser.And, "  cat   AND ran "), "spimi", 10))
	assert.NotEqual(t, a, Key(plan(t, parser.And, "cat AND ran"), "naive", 10))
	assert.NotEqual(t, a, Key(plan(t, parser.And, "cat AND ran"), "spimi", 5))
	assert.NotEqual(t, a, Key(plan(t, parser.Or, "cat OR ran"), "spimi", 10))
}

func TestGetOrCompute(t *testing.T) {
	c := New(newMemStore(), time.Minute, nil)
	key := Key(plan(t, parser.Single, "cat"), "naive", 10)
	calls := 0
	compute := func() (*executor.SearchResult, error) {
		calls++
		return &executor.SearchResult{Query: "cat", Total: 2, Hits: []executor.Hit{{DocID: 1}, {DocID: 2}}}, nil
	}

	res, hit, err := c.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, res.Total)

	res, hit, err = c.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []executor.Hit{{DocID: 1}, {DocID: 2}}, res.Hits)
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestErrorsNotCached(t *testing.T) {
	c := New(newMemStore(), time.Minute, nil)
	key := Key(plan(t, parser.Single, "bird"), "naive", 10)
	boom := errors.New("term not found")
	var calls atomic.Int32
	for range 2 {
		_, _, err := c.GetOrCompute(context.Background(), key, func() (*executor.SearchResult, error) {
			calls.Add(1)
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, nil)
	key := Key(plan(t, parser.Single, "cat"), "naive", 10)
	c.Set(context.Background(), key, &executor.SearchResult{Total: 1})
	store.data["unrelated"] = "x"

	require.NoError(t, c.Invalidate(context.Background()))
	_, ok := c.Get(context.Background(), key)
	assert.False(t, ok)
	assert.Contains(t, store.data, "unrelated")
}
