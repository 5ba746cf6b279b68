package store

import (
	"context"
	"fmt"
	"strings"
)

// Options select and locate a backend.
type Options struct {
	Driver      string // file, sqlite or postgres
	FilePath    string
	SQLitePath  string
	DatabaseURL string
}

// Open returns the backend named by opts.Driver. An empty driver means "file".
func Open(ctx context.Context, opts Options) (DocumentStore, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "file", "json":
		path := opts.FilePath
		if path == "" {
			path = "db.json"
		}
		return NewFileStore(path), nil
	case "sqlite", "sqlite3":
		path := opts.SQLitePath
		if path == "" {
			path = "varshini.db"
		}
		return OpenSQLite(ctx, path)
	case "postgres", "postgresql", "pgx":
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres store requires DATABASE_URL")
		}
		return OpenPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// Copy writes the document held by src into dst, replacing its contents.
func Copy(ctx context.Context, src, dst DocumentStore) error {
	doc, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}
	if err := dst.Save(ctx, doc); err != nil {
		return fmt.Errorf("save destination: %w", err)
	}
	return nil
}
