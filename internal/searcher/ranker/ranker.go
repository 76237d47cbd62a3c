// Package ranker scores documents for ranked queries: BM25 over the whole
// corpus and coordination-level matching for OR queries.
package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
)

const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

type Params struct {
	K1 float64
	B  float64
}

func DefaultParams() Params {
	return Params{K1: DefaultK1, B: DefaultB}
}

type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// TermPostings pairs a query term with its postings. Postings must be
// non-empty.
type TermPostings struct {
	Term     string
	Postings index.PostingList
}

// IDF is log10(n/df).
func IDF(n, df int) float64 {
	return math.Log10(float64(n) / float64(df))
}

// TFNorm is the saturated, length-normalized term frequency
// ((k1+1)*tf) / (k1*((1-b) + b*docLen/avgLen) + tf).
func TFNorm(tf, docLen, avgLen float64, p Params) float64 {
	ratio := 0.0
	if avgLen > 0 {
		ratio = docLen / avgLen
	}
	denom := p.K1*((1-p.B)+p.B*ratio) + tf
	if denom == 0 {
		return 0
	}
	return ((p.K1 + 1) * tf) / denom
}

// BM25 scores every document in stats, including those matching no term,
// and returns the top limit ordered by score descending then document ID
// ascending. Scores are rounded to four decimals after ordering.
func BM25(terms []TermPostings, stats *corpus.Stats, p Params, limit int) []ScoredDoc {
	n := stats.N()
	idfs := make([]float64, len(terms))
	for i, t := range terms {
		idfs[i] = IDF(n, len(t.Postings))
	}

	ids := stats.DocIDs()
	scored := make([]ScoredDoc, 0, len(ids))
	for _, docID := range ids {
		docLen := float64(stats.Len(docID))
		var rsv float64
		for i, t := range terms {
			tf, ok := t.Postings.Find(docID)
			if !ok {
				tf = 0
			}
			rsv += idfs[i] * TFNorm(float64(tf), docLen, stats.AvgDocLength, p)
		}
		scored = append(scored, ScoredDoc{DocID: docID, Score: rsv})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].DocID < scored[j].DocID
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	for i := range scored {
		scored[i].Score = math.Round(scored[i].Score*10000) / 10000
	}
	return scored
}

type CoordinatedDoc struct {
	DocID int `json:"doc_id"`
	Count int `json:"count"`
}

// Coordinate counts, for every document in the concatenation of lists, how
// many lists contain it, and returns the top limit by count descending then
// document ID ascending.
func Coordinate(lists [][]int, limit int) []CoordinatedDoc {
	counts := make(map[int]int)
	for _, ids := range lists {
		for _, id := range ids {
			counts[id]++
		}
	}
	out := make([]CoordinatedDoc, 0, len(counts))
	for id, c := range counts {
		out = append(out, CoordinatedDoc{DocID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].DocID < out[j].DocID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
