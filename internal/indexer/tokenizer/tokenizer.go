// Package tokenizer turns cleaned article text into index terms. Words are
// segmented with Unicode UAX #29 rules after NFKC normalization; case
// folding and Snowball stemming are optional and must match between build
// and query time.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/kljensen/snowball"
	"golang.org/x/text/unicode/norm"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
)

type Options struct {
	Lowercase bool
	Stem      bool
}

// Tokenizer is safe for concurrent use.
type Tokenizer struct {
	opts Options
}

func New(opts Options) *Tokenizer {
	return &Tokenizer{opts: opts}
}

// Tokenize returns the terms of text in order, duplicates kept.
func (t *Tokenizer) Tokenize(text string) []string {
	text = norm.NFKC.String(corpus.Clean(text))
	seg := words.FromString(text)
	var out []string
	for seg.Next() {
		if term := t.normalize(seg.Value()); term != "" {
			out = append(out, term)
		}
	}
	return out
}

// NormalizeQuery maps one query word onto the terms stored in the index
// for it. Cleaning can split a word ("5pct" gives "5" and "pct") or drop
// it entirely, so the result may hold zero, one or several terms.
func (t *Tokenizer) NormalizeQuery(word string) []string {
	return t.Tokenize(word)
}

// normalize returns "" for segments with no letter or digit.
func (t *Tokenizer) normalize(word string) string {
	word = norm.NFKC.String(strings.TrimSpace(word))
	if !hasWordRune(word) {
		return ""
	}
	if t.opts.Lowercase {
		word = strings.ToLower(word)
	}
	if t.opts.Stem {
		stemmed, err := snowball.Stem(word, "english", false)
		if err == nil && stemmed != "" {
			if t.opts.Lowercase {
				word = stemmed
			} else {
				word = restoreCase(word, stemmed)
			}
		}
	}
	return word
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// restoreCase reapplies the capitalization pattern of word to its
// lowercased stem: all caps stay all caps and a leading capital is kept.
func restoreCase(word, stem string) string {
	if strings.ToUpper(word) == word {
		return strings.ToUpper(stem)
	}
	first := []rune(word)[0]
	if unicode.IsUpper(first) {
		rs := []rune(stem)
		rs[0] = unicode.ToUpper(rs[0])
		return string(rs)
	}
	return stem
}
