package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// LoadPostgres reads (id, body) rows from table ordered by id and
// tokenizes each body. Rows with a non-positive id are skipped.
func LoadPostgres(ctx context.Context, db *sql.DB, table string, tok Tokenizer) (*MemoryStore, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT id, body FROM %s ORDER BY id", table))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var docs []Document
	skipped := 0
	for rows.Next() {
		var (
			id   int
			body sql.NullString
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		if id <= 0 {
			skipped++
			continue
		}
		docs = append(docs, Document{ID: id, Tokens: tok.Tokenize(body.String)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	slog.Default().With("component", "postgres-loader").Info("corpus loaded",
		"table", table, "documents", len(docs), "skipped", skipped)
	return NewMemoryStore(docs), nil
}

// SeedPostgres creates table if needed and upserts articles into it inside
// one transaction. The indexer uses it to mirror the Reuters archive into
// Postgres.
func SeedPostgres(ctx context.Context, inTx func(context.Context, func(*sql.Tx) error) error, table string, articles []Article) error {
	if !identifier.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY, body TEXT NOT NULL)", table)); err != nil {
			return fmt.Errorf("creating %s: %w", table, err)
		}
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
			"INSERT INTO %s (id, body) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body", table))
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, a := range articles {
			if _, err := stmt.ExecContext(ctx, a.NewID, a.Body); err != nil {
				return fmt.Errorf("inserting article %d: %w", a.NewID, err)
			}
		}
		return nil
	})
}
