package index

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
)

type termFreq struct {
	term string
	freq int
}

// countTerms builds the frequency table of one document in a single pass,
// keeping terms in first-seen order.
func countTerms(tokens []string) []termFreq {
	pos := make(map[string]int, len(tokens))
	var out []termFreq
	for _, tok := range tokens {
		if i, ok := pos[tok]; ok {
			out[i].freq++
			continue
		}
		pos[tok] = len(out)
		out = append(out, termFreq{term: tok, freq: 1})
	}
	return out
}

// BuildSPIMI computes a frequency table per document, using up to workers
// goroutines, then appends one posting per distinct term to that term's
// list in document order. Each list is finally sorted by document ID with
// duplicate document entries collapsed to the first one seen.
func BuildSPIMI(docs []corpus.Document, workers int) *SPIMIIndex {
	tables := make([][]termFreq, len(docs))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, d := range docs {
		g.Go(func() error {
			tables[i] = countTerms(d.Tokens)
			return nil
		})
	}
	g.Wait()

	postings := make(map[string]PostingList)
	for i, d := range docs {
		for _, tf := range tables[i] {
			postings[tf.term] = append(postings[tf.term], Posting{DocID: d.ID, Frequency: tf.freq})
		}
	}

	for term, pl := range postings {
		postings[term] = dedupe(pl)
	}
	return newSPIMI(postings)
}

func dedupe(pl PostingList) PostingList {
	sort.SliceStable(pl, func(i, j int) bool { return pl[i].DocID < pl[j].DocID })
	out := pl[:0]
	for _, p := range pl {
		if len(out) > 0 && out[len(out)-1].DocID == p.DocID {
			continue
		}
		out = append(out, p)
	}
	return out
}
