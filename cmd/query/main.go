// Command query runs queries against the naive and SPIMI indexes side by
// side and prints the results. Without arguments it runs a fixed set of
// queries covering every query kind.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/logger"
)

var defaultQueries = []string{
	"Bush",
	"drug AND bankruptcy",
	"Democrat OR welfare OR healthcare OR reform OR policy",
	"Democrat welfare healthcare reform policy",
}

// maxPrinted caps the doc IDs printed for boolean results.
const maxPrinted = 25

func main() {
	if err := run(os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "query: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	var (
		configPath string
		mode       string
		only       string
		limit      int
		build      bool
	)
	flagSet := pflag.NewFlagSet("query", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "configs/development.yaml", "path to config file")
	flagSet.StringVarP(&mode, "mode", "m", "", "query kind: single, and, or, bm25 (detected when empty)")
	flagSet.StringVarP(&only, "index", "i", "", "query only this variant: naive or spimi")
	flagSet.IntVarP(&limit, "limit", "n", 10, "maximum ranked results")
	flagSet.BoolVar(&build, "build", false, "build indexes in memory from the corpus instead of loading them")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	kind, err := parser.ParseKind(mode)
	if err != nil {
		return err
	}
	variants := index.Variants
	if only != "" {
		v, err := index.ParseVariant(only)
		if err != nil {
			return err
		}
		variants = []index.Variant{v}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tok := indexer.NewTokenizer(cfg.Corpus)
	executors, err := openExecutors(ctx, cfg, variants, build, tok)
	if err != nil {
		return err
	}

	queries := flagSet.Args()
	if len(queries) == 0 {
		queries = defaultQueries
	}
	for _, q := range queries {
		fmt.Fprintf(out, "query: %s\n", q)
		plan, err := parser.Parse(kind, q, tok.NormalizeQuery)
		if err != nil {
			fmt.Fprintf(out, "  error: %v\n\n", err)
			continue
		}
		n := limit
		if plan.Kind == parser.Single || plan.Kind == parser.And {
			n = 0
		}
		for _, v := range variants {
			res, err := executors[v].Execute(plan, n)
			if err != nil {
				fmt.Fprintf(out, "  %-6s error: %v\n", v, err)
				continue
			}
			printResult(out, v, res)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func openExecutors(ctx context.Context, cfg *config.Config, variants []index.Variant, build bool, tok corpus.Tokenizer) (map[index.Variant]*executor.Executor, error) {
	params := ranker.Params{K1: cfg.Search.K1, B: cfg.Search.B}
	if !build {
		reg := executor.NewRegistry(cfg.Index.DataDir, params)
		if err := reg.Load(variants); err != nil {
			return nil, fmt.Errorf("loading indexes from %s (run with --build to index in memory): %w", cfg.Index.DataDir, err)
		}
		out := make(map[index.Variant]*executor.Executor, len(variants))
		for _, v := range variants {
			e, err := reg.Get(v)
			if err != nil {
				return nil, err
			}
			out[v] = e
		}
		return out, nil
	}

	store, err := indexer.LoadCorpus(ctx, cfg, tok)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	docs := store.Documents()
	stats := corpus.ComputeStats(docs)
	out := make(map[index.Variant]*executor.Executor, len(variants))
	for _, v := range variants {
		idx, err := index.Build(v, docs, cfg.Index.Workers)
		if err != nil {
			return nil, err
		}
		out[v] = executor.New(idx, stats, params)
	}
	return out, nil
}

func printResult(out io.Writer, v index.Variant, res *executor.SearchResult) {
	switch res.Kind {
	case parser.Single.String(), parser.And.String():
		ids := make([]string, 0, min(len(res.Hits), maxPrinted))
		for i, h := range res.Hits {
			if i == maxPrinted {
				ids = append(ids, "...")
				break
			}
			ids = append(ids, fmt.Sprint(h.DocID))
		}
		fmt.Fprintf(out, "  %-6s %s: %d docs [%s]\n", v, res.Kind, res.Total, strings.Join(ids, " "))
	case parser.Or.String():
		fmt.Fprintf(out, "  %-6s %s:", v, res.Kind)
		for _, h := range res.Hits {
			fmt.Fprintf(out, " %d(%d)", h.DocID, h.Count)
		}
		fmt.Fprintln(out)
	default:
		fmt.Fprintf(out, "  %-6s %s:", v, res.Kind)
		for _, h := range res.Hits {
			var score float64
			if h.Score != nil {
				score = *h.Score
			}
			fmt.Fprintf(out, " %d(%.4f)", h.DocID, score)
		}
		fmt.Fprintln(out)
	}
}
