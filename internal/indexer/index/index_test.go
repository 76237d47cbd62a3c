package index

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
)

func scenario() []corpus.Document {
	return []corpus.Document{
		{ID: 1, Tokens: strings.Fields("the cat sat")},
		{ID: 2, Tokens: strings.Fields("the cat ran")},
		{ID: 3, Tokens: strings.Fields("a dog ran")},
	}
}

func randomCorpus(seed uint64, n int) []corpus.Document {
	r := rand.New(rand.NewPCG(seed, seed))
	vocab := strings.Fields("bush drug bankruptcy democrat welfare healthcare reform policy oil cocoa trade rate")
	docs := make([]corpus.Document, 0, n)
	for id := 1; id <= n; id++ {
		var toks []string
		for range r.IntN(20) {
			toks = append(toks, vocab[r.IntN(len(vocab))])
		}
		docs = append(docs, corpus.Document{ID: id, Tokens: toks})
	}
	return docs
}

func TestBuildNaiveScenario(t *testing.T) {
	idx := BuildNaive(scenario())

	ids, ok := idx.DocIDs("cat")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, ids)

	ids, _ = idx.DocIDs("ran")
	assert.Equal(t, []int{2, 3}, ids)

	_, ok = idx.DocIDs("bird")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "cat", "dog", "ran", "sat", "the"}, idx.Terms())
	assert.Equal(t, []int{1, 2, 3}, idx.Documents())
	assert.Equal(t, 9, idx.Size())
	assert.Equal(t, Naive, idx.Variant())
}

func TestBuildSPIMIScenario(t *testing.T) {
	docs := scenario()
	docs[0].Tokens = append(docs[0].Tokens, "cat", "cat")
	idx := BuildSPIMI(docs, 2)

	pl, ok := idx.Lookup("cat")
	require.True(t, ok)
	assert.Equal(t, PostingList{{DocID: 1, Frequency: 3}, {DocID: 2, Frequency: 1}}, pl)
	assert.Equal(t, SPIMI, idx.Variant())
}

func TestEmptyDocumentsContributeNothing(t *testing.T) {
	docs := []corpus.Document{{ID: 1}, {ID: 2, Tokens: []string{"oil"}}, {ID: 3, Tokens: []string{}}}
	for _, v := range Variants {
		idx, err := Build(v, docs, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"oil"}, idx.Terms(), v.String())
		assert.Equal(t, []int{2}, idx.Documents(), v.String())
	}
}

func TestMembershipEquivalence(t *testing.T) {
	docs := randomCorpus(7, 200)
	naive := BuildNaive(docs)
	spimi := BuildSPIMI(docs, 4)

	require.Equal(t, naive.Terms(), spimi.Terms())
	for _, term := range naive.Terms() {
		n, _ := naive.DocIDs(term)
		s, _ := spimi.DocIDs(term)
		assert.Equal(t, n, s, term)
	}
}

func TestSPIMIFrequencyIsLiteralCount(t *testing.T) {
	docs := randomCorpus(11, 100)
	idx := BuildSPIMI(docs, 3)
	byID := make(map[int][]string, len(docs))
	for _, d := range docs {
		byID[d.ID] = d.Tokens
	}

	for _, term := range idx.Terms() {
		pl, _ := idx.Lookup(term)
		for _, p := range pl {
			count := 0
			for _, tok := range byID[p.DocID] {
				if tok == term {
					count++
				}
			}
			assert.Equal(t, count, p.Frequency, "term %q doc %d", term, p.DocID)
		}
	}
}

func TestPostingsSortedAndUnique(t *testing.T) {
	docs := randomCorpus(3, 150)
	// reversed input order must not leak into postings order
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
	for _, v := range Variants {
		idx, err := Build(v, docs, 2)
		require.NoError(t, err)
		for _, term := range idx.Terms() {
			ids, _ := idx.DocIDs(term)
			for i := 1; i < len(ids); i++ {
				require.Less(t, ids[i-1], ids[i], "%s %q", v, term)
			}
		}
	}
}

func TestSPIMIDuplicateDocumentCollapses(t *testing.T) {
	docs := []corpus.Document{
		{ID: 4, Tokens: []string{"oil", "oil"}},
		{ID: 4, Tokens: []string{"oil"}},
	}
	pl, _ := BuildSPIMI(docs, 1).Lookup("oil")
	assert.Equal(t, PostingList{{DocID: 4, Frequency: 2}}, pl)
}

func TestPostingListFind(t *testing.T) {
	pl := PostingList{{DocID: 2, Frequency: 5}, {DocID: 9, Frequency: 1}}
	f, ok := pl.Find(2)
	assert.True(t, ok)
	assert.Equal(t, 5, f)

	f, ok = pl.Find(3)
	assert.False(t, ok)
	assert.Zero(t, f)
	assert.Equal(t, []int{2, 9}, pl.DocIDs())
}

func TestPostingJSONShape(t *testing.T) {
	data, err := json.Marshal(PostingList{{DocID: 1, Frequency: 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `[[1,3]]`, string(data))

	var p Posting
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &p))
}

func TestNewIndexValidation(t *testing.T) {
	_, err := NewNaiveIndex(map[string][]int{"oil": {3, 1}})
	assert.ErrorIs(t, err, apperrors.ErrCorruptIndex)

	_, err = NewSPIMIIndex(map[string]PostingList{"oil": {{DocID: 1, Frequency: 0}}})
	assert.ErrorIs(t, err, apperrors.ErrCorruptIndex)

	idx, err := NewSPIMIIndex(map[string]PostingList{"oil": {{DocID: 1, Frequency: 2}, {DocID: 5, Frequency: 1}}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, idx.Documents())
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant(" SPIMI ")
	require.NoError(t, err)
	assert.Equal(t, SPIMI, v)

	_, err = ParseVariant("bsbi")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVariant)

	_, err = Build(Variant(9), nil, 1)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVariant)
}
