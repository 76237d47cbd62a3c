package indexer

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/postgres"
)

// NewTokenizer returns the tokenizer described by cfg. Queries must be
// normalized with the same settings the index was built with.
func NewTokenizer(cfg config.CorpusConfig) *tokenizer.Tokenizer {
	return tokenizer.New(tokenizer.Options{Lowercase: cfg.Lowercase, Stem: cfg.Stem})
}

// LoadCorpus reads and tokenizes the documents named by cfg.Corpus.Source.
func LoadCorpus(ctx context.Context, cfg *config.Config, tok corpus.Tokenizer) (*corpus.MemoryStore, error) {
	switch cfg.Corpus.Source {
	case "reuters":
		return corpus.LoadReuters(ctx, cfg.Corpus.Pattern, cfg.Corpus.ParseWorkers, tok)
	case "postgres":
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		defer pg.Close()
		return corpus.LoadPostgres(ctx, pg.DB, cfg.Corpus.Table, tok)
	default:
		return nil, fmt.Errorf("unknown corpus source %q", cfg.Corpus.Source)
	}
}

// SeedPostgres copies the Reuters archive matched by cfg.Corpus.Pattern into
// the configured documents table.
func SeedPostgres(ctx context.Context, cfg *config.Config) (int, error) {
	articles, err := corpus.ReadReuters(ctx, cfg.Corpus.Pattern, cfg.Corpus.ParseWorkers)
	if err != nil {
		return 0, err
	}
	pg, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return 0, err
	}
	defer pg.Close()
	if err := corpus.SeedPostgres(ctx, pg.InTx, cfg.Corpus.Table, articles); err != nil {
		return 0, err
	}
	return len(articles), nil
}
