// Package parser turns a raw query string into a QueryPlan of normalized
// terms. Boolean queries are split on the case-sensitive standalone
// keywords AND and OR; BM25 queries are split on whitespace.
package parser

import (
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
)

type Kind int

const (
	Single Kind = iota + 1
	And
	Or
	BM25
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case And:
		return "and"
	case Or:
		return "or"
	case BM25:
		return "bm25"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts the names returned by Kind.String in any case. The
// empty string yields 0, meaning "detect from the query".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case "single", "term":
		return Single, nil
	case "and":
		return And, nil
	case "or":
		return Or, nil
	case "bm25", "ranked":
		return BM25, nil
	default:
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "unknown query mode %q", s)
	}
}

// Detect picks a kind for raw: AND or OR if the keyword occurs, Single for
// one word, BM25 otherwise.
func Detect(raw string) Kind {
	words := strings.Fields(raw)
	for _, w := range words {
		switch w {
		case "AND":
			return And
		case "OR":
			return Or
		}
	}
	if len(words) == 1 {
		return Single
	}
	return BM25
}

type QueryPlan struct {
	Kind  Kind
	Terms []string
	Raw   string
}

// Parse splits raw according to kind and passes every word through
// normalize, which must match the tokenizer used at build time. A word may
// normalize to several terms or to none. A kind of 0 is resolved with
// Detect. An explicit Single query must hold exactly one word that yields
// one term; a detected single word that yields several becomes an And.
func Parse(kind Kind, raw string, normalize func(string) []string) (*QueryPlan, error) {
	detected := kind == 0
	if detected {
		kind = Detect(raw)
	}
	if normalize == nil {
		normalize = trimmed
	}
	plan := &QueryPlan{Kind: kind, Raw: raw}

	var words []string
	switch kind {
	case Single:
		words = strings.Fields(raw)
		if len(words) > 1 {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"single-term query has %d words: %q", len(words), raw)
		}
	case And:
		words = splitKeyword(raw, "AND")
	case Or:
		words = splitKeyword(raw, "OR")
	case BM25:
		words = strings.Fields(raw)
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "unknown query kind %d", int(kind))
	}

	for _, w := range words {
		for _, term := range normalize(w) {
			if term != "" {
				plan.Terms = append(plan.Terms, term)
			}
		}
	}
	if len(plan.Terms) == 0 {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrEmptyQuery, raw)
	}
	if kind == Single && len(plan.Terms) > 1 {
		if !detected {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"single-term query %q normalizes to %d terms", raw, len(plan.Terms))
		}
		plan.Kind = And
	}
	return plan, nil
}

func trimmed(w string) []string {
	if w = strings.TrimSpace(w); w != "" {
		return []string{w}
	}
	return nil
}

// splitKeyword returns the operand words of raw with every standalone
// occurrence of keyword removed. An operand of several words contributes
// each word.
func splitKeyword(raw, keyword string) []string {
	var out []string
	for _, w := range strings.Fields(raw) {
		if w == keyword {
			continue
		}
		out = append(out, w)
	}
	return out
}
