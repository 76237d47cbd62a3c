package corpus

import (
	"math"
	"sort"
)

// Stats holds per-document lengths and the corpus mean length.
type Stats struct {
	DocLengths   map[int]int
	AvgDocLength float64
}

// ComputeStats counts every token, duplicates included. The average is
// rounded to two decimals, matching the persisted form.
func ComputeStats(docs []Document) *Stats {
	s := &Stats{DocLengths: make(map[int]int, len(docs))}
	total := 0
	for _, d := range docs {
		s.DocLengths[d.ID] = len(d.Tokens)
		total += len(d.Tokens)
	}
	if len(s.DocLengths) > 0 {
		s.AvgDocLength = math.Round(float64(total)/float64(len(s.DocLengths))*100) / 100
	}
	return s
}

// N is the number of documents in the corpus.
func (s *Stats) N() int {
	return len(s.DocLengths)
}

// DocIDs returns every document ID in ascending order.
func (s *Stats) DocIDs() []int {
	ids := make([]int, 0, len(s.DocLengths))
	for id := range s.DocLengths {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the length of docID, or 0 for an unknown document.
func (s *Stats) Len(docID int) int {
	return s.DocLengths[docID]
}
