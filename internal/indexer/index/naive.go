package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
)

type pair struct {
	term  string
	docID int
}

// BuildNaive emits one (term, document) pair per distinct term of each
// document, sorts all pairs by term then document, and folds runs of equal
// terms into postings lists. Documents without tokens add nothing.
func BuildNaive(docs []corpus.Document) *NaiveIndex {
	var pairs []pair
	for _, d := range docs {
		for _, term := range d.Unique() {
			pairs = append(pairs, pair{term: term, docID: d.ID})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].term != pairs[j].term {
			return pairs[i].term < pairs[j].term
		}
		return pairs[i].docID < pairs[j].docID
	})

	postings := make(map[string][]int)
	for i, p := range pairs {
		if i > 0 && pairs[i-1] == p {
			continue
		}
		postings[p.term] = append(postings[p.term], p.docID)
	}
	return newNaive(postings)
}
