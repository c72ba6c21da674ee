package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order inside one transaction. Every statement is
// idempotent, so MigrateUp runs on each start.
var schema = []struct {
	name string
	stmt string
}{
	{"articles table", `
CREATE TABLE IF NOT EXISTS articles (
    id           SERIAL PRIMARY KEY,
    title        VARCHAR(255) NOT NULL,
    author       VARCHAR(150) NOT NULL,
    body         TEXT NOT NULL,
    tags         TEXT,
    published_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uix_title_author UNIQUE (title, author)
)`},
	{"author index", `CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author)`},
	{"published_at index", `CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC NULLS LAST)`},
}

// MigrateUp creates the articles table and its indexes. A failed statement
// rolls back the whole batch.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range schema {
		if _, err := tx.ExecContext(ctx, s.stmt); err != nil {
			return fmt.Errorf("migrate: %s: %w", s.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	return nil
}
