package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		raw   string
		terms []string
	}{
		{"single", Single, "  Bush ", []string{"Bush"}},
		{"and", And, "drug AND bankruptcy", []string{"drug", "bankruptcy"}},
		{"or", Or, "Democrat OR welfare OR healthcare OR reform OR policy",
			[]string{"Democrat", "welfare", "healthcare", "reform", "policy"}},
		{"lowercase keyword is a term", And, "cat and dog", []string{"cat", "and", "dog"}},
		{"bm25", BM25, "Democrat welfare  healthcare\treform policy",
			[]string{"Democrat", "welfare", "healthcare", "reform", "policy"}},
		{"detect and", 0, "cat AND ran", []string{"cat", "ran"}},
		{"detect single", 0, "cat", []string{"cat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Parse(tt.kind, tt.raw, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.terms, plan.Terms)
			assert.Equal(t, tt.raw, plan.Raw)
		})
	}
}

func TestParseNormalizes(t *testing.T) {
	plan, err := Parse(Or, "Cat OR -- OR Dog", func(s string) []string {
		if s == "--" {
			return nil
		}
		return []string{strings.ToLower(s)}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, plan.Terms)
}

// splitDigits mimics the indexer splitting "5pct" into "5" and "pct".
func splitDigits(s string) []string {
	if s == "5pct" {
		return []string{"5", "pct"}
	}
	return []string{s}
}

func TestParseMultiTermWords(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		raw   string
		want  Kind
		terms []string
	}{
		{"and keeps every piece", And, "rate AND 5pct", And, []string{"rate", "5", "pct"}},
		{"bm25 keeps every piece", BM25, "rose 5pct", BM25, []string{"rose", "5", "pct"}},
		{"detected single becomes and", 0, "5pct", And, []string{"5", "pct"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Parse(tt.kind, tt.raw, splitDigits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Kind)
			assert.Equal(t, tt.terms, plan.Terms)
		})
	}
}

func TestParseSingleRejectsSeveralTerms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"several words", "Bush Clinton"},
		{"word with several terms", "5pct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(Single, tt.raw, splitDigits)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Equal(t, 400, apperrors.HTTPStatusCode(err))
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "AND", "OR OR"} {
		_, err := Parse(Detect(raw), raw, nil)
		assert.ErrorIs(t, err, apperrors.ErrEmptyQuery, raw)
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, Single, Detect("Bush"))
	assert.Equal(t, And, Detect("drug AND bankruptcy"))
	assert.Equal(t, Or, Detect("a OR b"))
	assert.Equal(t, BM25, Detect("Democrat welfare"))
	assert.Equal(t, BM25, Detect(""))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("BM25")
	require.NoError(t, err)
	assert.Equal(t, BM25, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Kind(0), k)

	_, err = ParseKind("phrase")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, "or", Or.String())
}
