// Package benchmark measures index construction, persistence and query
// throughput over synthetic corpora shaped like the Reuters collection.
package benchmark

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/config"
)

var vocabulary = strings.Fields(`bush drug bankruptcy democrat welfare healthcare
	reform policy oil trade bank rate dollar yen tonnes wheat shares profit loss
	company said year market prices government official billion million net`)

// syntheticDocs returns n documents of 20 to 200 tokens drawn from a skewed
// vocabulary so that a few terms have long postings.
func syntheticDocs(n int) []corpus.Document {
	r := rand.New(rand.NewPCG(uint64(n), 7))
	docs := make([]corpus.Document, 0, n)
	for id := 1; id <= n; id++ {
		length := 20 + r.IntN(180)
		toks := make([]string, length)
		for i := range toks {
			// squaring biases the draw towards the front of the vocabulary
			f := r.Float64()
			toks[i] = vocabulary[int(f*f*float64(len(vocabulary)))]
		}
		docs = append(docs, corpus.Document{ID: id, Tokens: toks})
	}
	return docs
}

func BenchmarkBuildNaive(b *testing.B) {
	for _, n := range []int{1000, 10000} {
		docs := syntheticDocs(n)
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = index.BuildNaive(docs)
			}
		})
	}
}

func BenchmarkBuildSPIMI(b *testing.B) {
	docs := syntheticDocs(10000)
	for _, workers := range []int{1, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = index.BuildSPIMI(docs, workers)
			}
		})
	}
}

// BenchmarkEngineBuild includes statistics and JSON persistence of both
// variants.
func BenchmarkEngineBuild(b *testing.B) {
	store := corpus.NewMemoryStore(syntheticDocs(5000))
	engine, err := indexer.NewEngine(config.IndexConfig{
		DataDir:  b.TempDir(),
		Variants: []string{"naive", "spimi"},
		Workers:  4,
	})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := engine.Build(context.Background(), store); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReadIndex(b *testing.B) {
	dir := b.TempDir()
	if _, err := segment.NewWriter(dir).WriteIndex(index.BuildSPIMI(syntheticDocs(5000), 4)); err != nil {
		b.Fatal(err)
	}
	reader := segment.NewReader(dir)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := reader.ReadIndex(index.SPIMI); err != nil {
			b.Fatal(err)
		}
	}
}
