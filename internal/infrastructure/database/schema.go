package database

import (
	"context"
	"fmt"
)

// The catalog expects these tables to exist. EnsureSchema creates any
// that are missing; it never alters existing ones.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS magazines (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		author_id BIGINT NOT NULL REFERENCES authors(id),
		magazine_id BIGINT NOT NULL REFERENCES magazines(id)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS magazines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		author_id INTEGER NOT NULL REFERENCES authors(id),
		magazine_id INTEGER NOT NULL REFERENCES magazines(id)
	)`,
}

// SchemaFor returns the DDL for driver.
func SchemaFor(driver string) []string {
	if driver == DriverSQLite {
		return sqliteSchema
	}
	return postgresSchema
}

// EnsureSchema creates the catalog tables in one transaction.
func (g *Gateway) EnsureSchema(ctx context.Context) error {
	return g.WithTx(ctx, func(q Querier) error {
		for _, stmt := range SchemaFor(g.driver) {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
