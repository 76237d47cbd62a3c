// Package corpus loads documents for indexing. It reads the Reuters-21578
// SGML archive or a Postgres table, cleans and tokenizes each body, and
// computes the length statistics BM25 needs.
package corpus

import "sort"

// Document is one tokenized article. Tokens keep duplicates and source
// order.
type Document struct {
	ID     int
	Tokens []string
}

// Unique returns the distinct tokens of d in first-seen order.
func (d Document) Unique() []string {
	seen := make(map[string]struct{}, len(d.Tokens))
	out := make([]string, 0, len(d.Tokens))
	for _, tok := range d.Tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// Store supplies the full document set for a build.
type Store interface {
	Documents() []Document
}

// Tokenizer turns raw text into index terms.
type Tokenizer interface {
	Tokenize(text string) []string
}

// MemoryStore is a Store over an in-memory slice, ordered by document ID.
type MemoryStore struct {
	docs []Document
}

// NewMemoryStore sorts docs by ID. Documents sharing an ID keep only the
// first occurrence.
func NewMemoryStore(docs []Document) *MemoryStore {
	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	out := sorted[:0]
	for i, d := range sorted {
		if i > 0 && d.ID == sorted[i-1].ID {
			continue
		}
		out = append(out, d)
	}
	return &MemoryStore{docs: out}
}

// FromTexts tokenizes texts keyed by document ID.
func FromTexts(texts map[int]string, tok Tokenizer) *MemoryStore {
	docs := make([]Document, 0, len(texts))
	for id, text := range texts {
		docs = append(docs, Document{ID: id, Tokens: tok.Tokenize(text)})
	}
	return NewMemoryStore(docs)
}

func (s *MemoryStore) Documents() []Document {
	return s.docs
}
