// Package index holds the two inverted index variants and their builders.
// A naive index maps each term to the documents containing it; a SPIMI
// index additionally stores the in-document frequency. Both keep one entry
// per document per term, sorted by document ID, and are immutable once
// built.
package index

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
)

// Variant tags the construction strategy and therefore the postings shape.
type Variant int

const (
	Naive Variant = iota + 1
	SPIMI
)

// Variants lists every variant in build order.
var Variants = []Variant{Naive, SPIMI}

func (v Variant) String() string {
	switch v {
	case Naive:
		return "naive"
	case SPIMI:
		return "spimi"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant accepts "naive" or "spimi" in any case.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "naive":
		return Naive, nil
	case "spimi":
		return SPIMI, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedVariant, s)
	}
}

func (v Variant) MarshalText() ([]byte, error) {
	if v != Naive && v != SPIMI {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrUnsupportedVariant, int(v))
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Index is implemented only by *NaiveIndex and *SPIMIIndex. Callers that
// need frequencies type-switch on the concrete value.
type Index interface {
	Variant() Variant
	// DocIDs returns the ascending document IDs for term. The slice must
	// not be modified.
	DocIDs(term string) ([]int, bool)
	// Terms returns every term in ascending order.
	Terms() []string
	// Documents returns every document ID that appears in some postings
	// list, ascending.
	Documents() []int
	// Size is the total number of postings.
	Size() int
	sealed()
}

// NaiveIndex maps terms to document IDs.
type NaiveIndex struct {
	postings map[string][]int
	terms    []string
	docs     []int
	size     int
}

// NewNaiveIndex wraps postings after checking every list is strictly
// ascending with positive IDs.
func NewNaiveIndex(postings map[string][]int) (*NaiveIndex, error) {
	for term, ids := range postings {
		for i, id := range ids {
			if id <= 0 || (i > 0 && ids[i-1] >= id) {
				return nil, fmt.Errorf("%w: term %q: postings not strictly ascending at position %d",
					apperrors.ErrCorruptIndex, term, i)
			}
		}
	}
	return newNaive(postings), nil
}

func newNaive(postings map[string][]int) *NaiveIndex {
	idx := &NaiveIndex{postings: postings}
	seen := make(map[int]struct{})
	for term, ids := range postings {
		idx.terms = append(idx.terms, term)
		idx.size += len(ids)
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	sort.Strings(idx.terms)
	idx.docs = sortedKeys(seen)
	return idx
}

func (n *NaiveIndex) Variant() Variant { return Naive }
func (n *NaiveIndex) Terms() []string  { return n.terms }
func (n *NaiveIndex) Documents() []int { return n.docs }
func (n *NaiveIndex) Size() int        { return n.size }
func (n *NaiveIndex) sealed()          {}

func (n *NaiveIndex) DocIDs(term string) ([]int, bool) {
	ids, ok := n.postings[term]
	return ids, ok
}

// Postings exposes the underlying map for persistence.
func (n *NaiveIndex) Postings() map[string][]int { return n.postings }

// SPIMIIndex maps terms to (document, frequency) postings.
type SPIMIIndex struct {
	postings map[string]PostingList
	terms    []string
	docs     []int
	size     int
}

// NewSPIMIIndex wraps postings after checking ordering and that every
// frequency is positive.
func NewSPIMIIndex(postings map[string]PostingList) (*SPIMIIndex, error) {
	for term, pl := range postings {
		for i, p := range pl {
			if p.DocID <= 0 || (i > 0 && pl[i-1].DocID >= p.DocID) {
				return nil, fmt.Errorf("%w: term %q: postings not strictly ascending at position %d",
					apperrors.ErrCorruptIndex, term, i)
			}
			if p.Frequency <= 0 {
				return nil, fmt.Errorf("%w: term %q: document %d has frequency %d",
					apperrors.ErrCorruptIndex, term, p.DocID, p.Frequency)
			}
		}
	}
	return newSPIMI(postings), nil
}

func newSPIMI(postings map[string]PostingList) *SPIMIIndex {
	idx := &SPIMIIndex{postings: postings}
	seen := make(map[int]struct{})
	for term, pl := range postings {
		idx.terms = append(idx.terms, term)
		idx.size += len(pl)
		for _, p := range pl {
			seen[p.DocID] = struct{}{}
		}
	}
	sort.Strings(idx.terms)
	idx.docs = sortedKeys(seen)
	return idx
}

func (s *SPIMIIndex) Variant() Variant { return SPIMI }
func (s *SPIMIIndex) Terms() []string  { return s.terms }
func (s *SPIMIIndex) Documents() []int { return s.docs }
func (s *SPIMIIndex) Size() int        { return s.size }
func (s *SPIMIIndex) sealed()          {}

func (s *SPIMIIndex) DocIDs(term string) ([]int, bool) {
	pl, ok := s.postings[term]
	if !ok {
		return nil, false
	}
	return pl.DocIDs(), true
}

// Lookup returns the postings with frequencies for term.
func (s *SPIMIIndex) Lookup(term string) (PostingList, bool) {
	pl, ok := s.postings[term]
	return pl, ok
}

// Postings exposes the underlying map for persistence.
func (s *SPIMIIndex) Postings() map[string]PostingList { return s.postings }

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
