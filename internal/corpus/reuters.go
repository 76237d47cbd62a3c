package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// Article is one <REUTERS> record before tokenization.
type Article struct {
	NewID int
	Body  string
}

// ParseReuters extracts every article from a Reuters-21578 SGML stream.
// The body is the <TEXT> element without its <TITLE> and <DATELINE>
// children; each child is separated by a newline. Articles without a
// usable NEWID are skipped.
func ParseReuters(r io.Reader) ([]Article, error) {
	z := html.NewTokenizer(r)
	var (
		articles []Article
		current  *Article
		body     strings.Builder
		inText   int
		skip     int
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return articles, fmt.Errorf("tokenizing sgml: %w", err)
			}
			return articles, nil

		case html.StartTagToken:
			name, hasAttr := z.TagName()
			switch tag := string(name); {
			case tag == "reuters":
				current = &Article{}
				body.Reset()
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "newid" {
						if id, err := strconv.Atoi(string(val)); err == nil {
							current.NewID = id
						}
					}
				}
			case current == nil:
			case tag == "text":
				inText++
			case inText > 0 && (tag == "title" || tag == "dateline"):
				skip++
			case inText > 0 && skip == 0:
				body.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case current == nil:
			case tag == "reuters":
				if current.NewID > 0 {
					current.Body = strings.TrimPrefix(body.String(), "\n")
					articles = append(articles, *current)
				}
				current, inText, skip = nil, 0, 0
			case tag == "text" && inText > 0:
				inText--
			case (tag == "title" || tag == "dateline") && skip > 0:
				skip--
				body.WriteByte('\n')
			}

		case html.TextToken:
			if current != nil && inText > 0 && skip == 0 {
				body.Write(z.Text())
			}
		}
	}
}

// ReadReuters parses every file matching pattern with up to workers files
// in flight. Files are read in sorted name order and their articles are
// concatenated in that order.
func ReadReuters(ctx context.Context, pattern string, workers int) ([]Article, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no corpus files match %s", pattern)
	}
	sort.Strings(files)
	logger := slog.Default().With("component", "reuters-loader")

	perFile := make([][]Article, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			articles, err := ParseReuters(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			perFile[i] = articles
			logger.Debug("parsed corpus file", "file", filepath.Base(path), "articles", len(articles))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Article
	for _, articles := range perFile {
		all = append(all, articles...)
	}
	logger.Info("corpus read", "files", len(files), "articles", len(all))
	return all, nil
}

// LoadReuters reads the archive and tokenizes every article body. The
// resulting store is ordered by document ID.
func LoadReuters(ctx context.Context, pattern string, workers int, tok Tokenizer) (*MemoryStore, error) {
	articles, err := ReadReuters(ctx, pattern, workers)
	if err != nil {
		return nil, err
	}
	return Tokenize(ctx, articles, workers, tok)
}

// Tokenize turns articles into documents using up to workers goroutines.
func Tokenize(ctx context.Context, articles []Article, workers int, tok Tokenizer) (*MemoryStore, error) {
	docs := make([]Document, len(articles))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, a := range articles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = Document{ID: a.NewID, Tokens: tok.Tokenize(a.Body)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewMemoryStore(docs), nil
}
