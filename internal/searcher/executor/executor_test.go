package executor

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
)

func scenarioDocs() []corpus.Document {
	return []corpus.Document{
		{ID: 1, Tokens: strings.Fields("the cat sat")},
		{ID: 2, Tokens: strings.Fields("the cat ran")},
		{ID: 3, Tokens: strings.Fields("a dog ran")},
	}
}

func executors(docs []corpus.Document) map[index.Variant]*Executor {
	stats := corpus.ComputeStats(docs)
	return map[index.Variant]*Executor{
		index.Naive: New(index.BuildNaive(docs), stats, ranker.DefaultParams()),
		index.SPIMI: New(index.BuildSPIMI(docs, 2), stats, ranker.DefaultParams()),
	}
}

func randomDocs(seed uint64, n int) []corpus.Document {
	r := rand.New(rand.NewPCG(seed, 1))
	vocab := strings.Fields("bush drug bankruptcy democrat welfare healthcare reform policy oil trade")
	docs := make([]corpus.Document, 0, n)
	for id := 1; id <= n; id++ {
		toks := make([]string, 0, 12)
		for range 1 + r.IntN(12) {
			toks = append(toks, vocab[r.IntN(len(vocab))])
		}
		docs = append(docs, corpus.Document{ID: id, Tokens: toks})
	}
	return docs
}

func TestScenario(t *testing.T) {
	for v, e := range executors(scenarioDocs()) {
		t.Run(v.String(), func(t *testing.T) {
			ids, err := e.Lookup("cat")
			require.NoError(t, err)
			assert.Equal(t, []int{1, 2}, ids)

			ids, err = e.And([]string{"cat", "ran"})
			require.NoError(t, err)
			assert.Equal(t, []int{2}, ids)

			top, err := e.Or([]string{"cat", "ran", "dog"}, 2)
			require.NoError(t, err)
			require.Len(t, top, 2)
			// doc 3 matches ran and dog, so it ties doc 2 and wins over doc 1
			assert.Equal(t, []ranker.CoordinatedDoc{{DocID: 2, Count: 2}, {DocID: 3, Count: 2}}, top)

			top, err = e.Or([]string{"cat", "sat"}, 2)
			require.NoError(t, err)
			assert.Equal(t, []ranker.CoordinatedDoc{{DocID: 1, Count: 2}, {DocID: 2, Count: 1}}, top)
		})
	}
}

func TestLookupMissingTerm(t *testing.T) {
	e := executors(scenarioDocs())[index.Naive]
	_, err := e.Lookup("bird")
	assert.ErrorIs(t, err, apperrors.ErrTermNotFound)

	_, err = e.And([]string{"cat", "bird"})
	assert.ErrorIs(t, err, apperrors.ErrTermNotFound)
}

func TestAndEmpty(t *testing.T) {
	e := executors(scenarioDocs())[index.SPIMI]
	_, err := e.And(nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyQuery)
	_, err = e.Or(nil, 3)
	assert.ErrorIs(t, err, apperrors.ErrEmptyQuery)
	_, err = e.BM25(nil, 3)
	assert.ErrorIs(t, err, apperrors.ErrEmptyQuery)
}

func TestAndIsSubsetOfEveryTerm(t *testing.T) {
	docs := randomDocs(5, 300)
	e := executors(docs)[index.SPIMI]
	terms := []string{"drug", "bankruptcy", "oil"}

	got, err := e.And(terms)
	require.NoError(t, err)
	for _, term := range terms {
		ids, err := e.Lookup(term)
		require.NoError(t, err)
		assert.Subset(t, ids, got, term)
	}

	single, err := e.And([]string{"drug"})
	require.NoError(t, err)
	lookup, _ := e.Lookup("drug")
	assert.Equal(t, lookup, single)
}

func TestAndUniverseWithoutStats(t *testing.T) {
	docs := scenarioDocs()
	e := New(index.BuildNaive(docs), nil, ranker.DefaultParams())
	ids, err := e.And([]string{"ran"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ids)
}

func TestOrBounds(t *testing.T) {
	docs := randomDocs(9, 300)
	e := executors(docs)[index.Naive]
	terms := []string{"democrat", "welfare", "healthcare", "reform", "policy"}
	const k = 10

	top, err := e.Or(terms, k)
	require.NoError(t, err)
	require.Len(t, top, k)

	counts := make(map[int]int)
	for _, term := range terms {
		ids, _ := e.Lookup(term)
		for _, id := range ids {
			counts[id]++
		}
	}
	returned := make(map[int]bool)
	for _, d := range top {
		assert.GreaterOrEqual(t, d.Count, 1)
		assert.LessOrEqual(t, d.Count, len(terms))
		assert.Equal(t, counts[d.DocID], d.Count)
		returned[d.DocID] = true
	}
	kth := top[k-1].Count
	for id, c := range counts {
		if !returned[id] {
			assert.LessOrEqual(t, c, kth, "doc %d", id)
		}
	}
}

func TestOrSkipsMissingTerms(t *testing.T) {
	e := executors(scenarioDocs())[index.SPIMI]
	top, err := e.Or([]string{"bird", "dog"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []ranker.CoordinatedDoc{{DocID: 3, Count: 1}}, top)

	_, err = e.Or([]string{"bird", "fish"}, 5)
	assert.ErrorIs(t, err, apperrors.ErrTermNotFound)
}

func TestBM25(t *testing.T) {
	e := executors(scenarioDocs())[index.SPIMI]
	got, err := e.BM25([]string{"cat"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Greater(t, got[0].Score, got[2].Score)
	assert.Greater(t, got[1].Score, got[2].Score)
	assert.Equal(t, 3, got[2].DocID)

	_, err = e.BM25([]string{"cat", "bird"}, 10)
	assert.ErrorIs(t, err, apperrors.ErrZeroDocumentFrequency)
}

func TestBM25Preconditions(t *testing.T) {
	docs := scenarioDocs()
	_, err := executors(docs)[index.Naive].BM25([]string{"cat"}, 10)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVariant)

	_, err = New(index.BuildSPIMI(docs, 1), nil, ranker.DefaultParams()).BM25([]string{"cat"}, 10)
	assert.ErrorIs(t, err, apperrors.ErrMissingStatistics)

	_, err = executors(docs)[index.Naive].LookupPostings("cat")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVariant)

	pl, err := executors(docs)[index.SPIMI].LookupPostings("ran")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, pl.DocIDs())
}

func TestBM25Deterministic(t *testing.T) {
	docs := randomDocs(21, 200)
	e := executors(docs)[index.SPIMI]
	terms := []string{"democrat", "welfare", "healthcare", "reform", "policy"}
	first, err := e.BM25(terms, 10)
	require.NoError(t, err)
	for range 3 {
		again, err := e.BM25(terms, 10)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestExecute(t *testing.T) {
	e := executors(scenarioDocs())[index.SPIMI]
	tests := []struct {
		raw   string
		kind  parser.Kind
		limit int
		total int
		hits  []Hit
	}{
		{"cat", parser.Single, 0, 2, []Hit{{DocID: 1}, {DocID: 2}}},
		{"cat", parser.Single, 1, 2, []Hit{{DocID: 1}}},
		{"cat AND ran", parser.And, 10, 1, []Hit{{DocID: 2}}},
		{"cat OR ran OR dog", parser.Or, 2, 2, []Hit{{DocID: 2, Count: 2}, {DocID: 3, Count: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			plan, err := parser.Parse(tt.kind, tt.raw, nil)
			require.NoError(t, err)
			res, err := e.Execute(plan, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.total, res.Total)
			assert.Equal(t, tt.hits, res.Hits)
			assert.Equal(t, "spimi", res.Variant)
			assert.Equal(t, tt.kind.String(), res.Kind)
		})
	}

	plan, err := parser.Parse(parser.BM25, "cat sat", nil)
	require.NoError(t, err)
	res, err := e.Execute(plan, 1)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, 1, res.Hits[0].DocID)
}

func TestHitJSON(t *testing.T) {
	e := executors(scenarioDocs())[index.SPIMI]

	tests := []struct {
		name      string
		kind      parser.Kind
		raw       string
		wantScore bool
		wantCount bool
	}{
		{"bm25 keeps zero scores", parser.BM25, "sat", true, false},
		{"or reports counts", parser.Or, "cat OR ran", false, true},
		{"and has neither", parser.And, "cat AND the", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := parser.Parse(tt.kind, tt.raw, nil)
			require.NoError(t, err)
			res, err := e.Execute(plan, 0)
			require.NoError(t, err)

			data, err := json.Marshal(res.Hits)
			require.NoError(t, err)
			var rows []map[string]any
			require.NoError(t, json.Unmarshal(data, &rows))
			require.NotEmpty(t, rows)
			for _, row := range rows {
				_, hasScore := row["score"]
				_, hasCount := row["count"]
				assert.Equal(t, tt.wantScore, hasScore, row)
				assert.Equal(t, tt.wantCount, hasCount, row)
			}
		})
	}

	plan, err := parser.Parse(parser.BM25, "sat", nil)
	require.NoError(t, err)
	res, err := e.Execute(plan, 0)
	require.NoError(t, err)
	require.Len(t, res.Hits, 3)
	require.NotNil(t, res.Hits[2].Score)
	assert.Zero(t, *res.Hits[2].Score)
}

func TestExecuteSinglePlanWithSeveralTerms(t *testing.T) {
	e := executors(scenarioDocs())[index.Naive]
	_, err := e.Execute(&parser.QueryPlan{Kind: parser.Single, Terms: []string{"cat", "dog"}, Raw: "cat dog"}, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
