// Package executor answers single-term, AND, OR-ranked and BM25 queries
// against one index and its corpus statistics. An Executor holds no
// process-wide state; several may serve different variants side by side.
package executor

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
)

// DefaultLimit applies to ranked queries called with a non-positive limit.
const DefaultLimit = 10

type Executor struct {
	idx    index.Index
	stats  *corpus.Stats
	params ranker.Params
}

// New wraps idx. stats may be nil, in which case BM25 fails with
// ErrMissingStatistics and AND uses the indexed documents as its universe.
func New(idx index.Index, stats *corpus.Stats, params ranker.Params) *Executor {
	return &Executor{idx: idx, stats: stats, params: params}
}

func (e *Executor) Variant() index.Variant { return e.idx.Variant() }
func (e *Executor) Index() index.Index     { return e.idx }

// Lookup returns the document IDs containing term.
func (e *Executor) Lookup(term string) ([]int, error) {
	ids, ok := e.idx.DocIDs(term)
	if !ok {
		return nil, apperrors.TermNotFound(term)
	}
	return ids, nil
}

// LookupPostings returns term's postings with frequencies. Only a SPIMI
// index carries them.
func (e *Executor) LookupPostings(term string) (index.PostingList, error) {
	spimi, ok := e.idx.(*index.SPIMIIndex)
	if !ok {
		return nil, fmt.Errorf("%w: frequencies need a spimi index, have %s",
			apperrors.ErrUnsupportedVariant, e.idx.Variant())
	}
	pl, ok := spimi.Lookup(term)
	if !ok {
		return nil, apperrors.TermNotFound(term)
	}
	return pl, nil
}

// And intersects the corpus with every term's postings and returns the
// surviving document IDs in ascending order.
func (e *Executor) And(terms []string) ([]int, error) {
	if len(terms) == 0 {
		return nil, apperrors.ErrEmptyQuery
	}
	result := bitmapOf(e.universe())
	for _, term := range terms {
		ids, err := e.Lookup(term)
		if err != nil {
			return nil, err
		}
		result.And(bitmapOf(ids))
	}
	out := make([]int, 0, result.GetCardinality())
	it := result.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out, nil
}

// Or ranks documents by how many of terms they contain. Terms missing from
// the index add nothing; if every term is missing the query fails with
// ErrTermNotFound.
func (e *Executor) Or(terms []string, limit int) ([]ranker.CoordinatedDoc, error) {
	if len(terms) == 0 {
		return nil, apperrors.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	lists := make([][]int, 0, len(terms))
	for _, term := range terms {
		if ids, ok := e.idx.DocIDs(term); ok {
			lists = append(lists, ids)
		}
	}
	if len(lists) == 0 {
		return nil, apperrors.TermNotFound(strings.Join(terms, " OR "))
	}
	return ranker.Coordinate(lists, limit), nil
}

// BM25 scores every corpus document for terms. It requires a SPIMI index
// and corpus statistics; a term present in no document fails the query
// with ErrZeroDocumentFrequency.
func (e *Executor) BM25(terms []string, limit int) ([]ranker.ScoredDoc, error) {
	if len(terms) == 0 {
		return nil, apperrors.ErrEmptyQuery
	}
	spimi, ok := e.idx.(*index.SPIMIIndex)
	if !ok {
		return nil, fmt.Errorf("%w: bm25 needs a spimi index, have %s",
			apperrors.ErrUnsupportedVariant, e.idx.Variant())
	}
	if e.stats == nil || e.stats.N() == 0 {
		return nil, apperrors.ErrMissingStatistics
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	tps := make([]ranker.TermPostings, 0, len(terms))
	for _, term := range terms {
		pl, ok := spimi.Lookup(term)
		if !ok || len(pl) == 0 {
			return nil, apperrors.ZeroDocumentFrequency(term)
		}
		tps = append(tps, ranker.TermPostings{Term: term, Postings: pl})
	}
	return ranker.BM25(tps, e.stats, e.params, limit), nil
}

// Hit is one result row. Score is set for BM25, Count for OR. A BM25
// score of zero is still reported.
type Hit struct {
	DocID int      `json:"doc_id"`
	Score *float64 `json:"score,omitempty"`
	Count int      `json:"count,omitempty"`
}

type SearchResult struct {
	Query   string        `json:"query"`
	Kind    string        `json:"kind"`
	Variant string        `json:"variant"`
	Terms   []string      `json:"terms"`
	Total   int           `json:"total"`
	Hits    []Hit         `json:"hits"`
	Took    time.Duration `json:"took_ns"`
}

// Execute runs plan. limit caps the hits returned; for single-term and AND
// queries a non-positive limit returns every match and Total always counts
// every match.
func (e *Executor) Execute(plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	start := time.Now()
	res := &SearchResult{
		Query:   plan.Raw,
		Kind:    plan.Kind.String(),
		Variant: e.idx.Variant().String(),
		Terms:   plan.Terms,
		Hits:    []Hit{},
	}

	switch plan.Kind {
	case parser.Single, parser.And:
		var (
			ids []int
			err error
		)
		if plan.Kind == parser.Single {
			if len(plan.Terms) != 1 {
				return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
					"single-term query has %d terms", len(plan.Terms))
			}
			ids, err = e.Lookup(plan.Terms[0])
		} else {
			ids, err = e.And(plan.Terms)
		}
		if err != nil {
			return nil, err
		}
		res.Total = len(ids)
		if limit > 0 && len(ids) > limit {
			ids = ids[:limit]
		}
		for _, id := range ids {
			res.Hits = append(res.Hits, Hit{DocID: id})
		}

	case parser.Or:
		docs, err := e.Or(plan.Terms, limit)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			res.Hits = append(res.Hits, Hit{DocID: d.DocID, Count: d.Count})
		}
		res.Total = len(res.Hits)

	case parser.BM25:
		docs, err := e.BM25(plan.Terms, limit)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			score := d.Score
			res.Hits = append(res.Hits, Hit{DocID: d.DocID, Score: &score})
		}
		res.Total = len(res.Hits)

	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "unknown query kind %s", plan.Kind)
	}

	res.Took = time.Since(start)
	return res, nil
}

func (e *Executor) universe() []int {
	if e.stats != nil && e.stats.N() > 0 {
		return e.stats.DocIDs()
	}
	return e.idx.Documents()
}

func bitmapOf(ids []int) *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range ids {
		bm.Add(uint32(id))
	}
	return bm
}
