package store

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Dialect selects the SQL flavour; values are goose dialect names.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// collectionNames are the top-level document keys, one row each.
var collectionNames = []string{"users", "products", "leads", "categories", "warranties", "stats"}

// SQLStore keeps each document collection as a JSON row in a "collections" table.
// Update runs in one transaction and only rewrites collections that changed.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

// NewSQLStore wraps an open database. It does not run migrations.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenPostgres connects through pgx and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return open(ctx, db, DialectPostgres)
}

// OpenSQLite opens an embedded database file and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	// one writer at a time avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	return open(ctx, db, DialectSQLite)
}

func open(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	s := NewSQLStore(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

// Migrate applies the embedded goose migrations for the store's dialect.
func (s *SQLStore) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(string(s.dialect)); err != nil {
		return err
	}
	dir := "migrations/postgres"
	if s.dialect == DialectSQLite {
		dir = "migrations/sqlite"
	}
	return goose.UpContext(ctx, s.db, dir)
}

func (s *SQLStore) selectQuery(forUpdate bool) string {
	q := `SELECT name, body FROM collections`
	if forUpdate && s.dialect == DialectPostgres {
		q += ` FOR UPDATE`
	}
	return q
}

func (s *SQLStore) upsertQuery() string {
	if s.dialect == DialectPostgres {
		return `INSERT INTO collections (name, body, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`
	}
	return `INSERT INTO collections (name, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (name) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) readCollections(ctx context.Context, q queryer, forUpdate bool) (*models.Document, map[string][]byte, error) {
	rows, err := q.QueryContext(ctx, s.selectQuery(forUpdate))
	if err != nil {
		return nil, nil, fmt.Errorf("select collections: %v: %w", err, apperr.ErrStoreIO)
	}
	defer rows.Close()

	raw := make(map[string][]byte, len(collectionNames))
	for rows.Next() {
		var name string
		var body []byte
		if err := rows.Scan(&name, &body); err != nil {
			return nil, nil, fmt.Errorf("scan collection: %v: %w", err, apperr.ErrStoreIO)
		}
		raw[name] = body
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate collections: %v: %w", err, apperr.ErrStoreIO)
	}

	obj := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		obj[k] = v
	}
	joined, err := json.Marshal(obj)
	if err != nil {
		return nil, nil, fmt.Errorf("assemble document: %v: %w", err, apperr.ErrStoreIO)
	}
	doc := &models.Document{}
	if err := json.Unmarshal(joined, doc); err != nil {
		return nil, nil, fmt.Errorf("decode document: %v: %w", err, apperr.ErrStoreIO)
	}
	reportProblems(ctx, string(s.dialect), doc)
	doc.Normalize()
	return doc, raw, nil
}

// encodeCollections splits the encoded document into one body per top-level member.
func encodeCollections(doc *models.Document) (map[string][]byte, error) {
	doc.Normalize()
	doc.RefreshStats(time.Now())
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var parts map[string]json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return nil, fmt.Errorf("split document: %w", err)
	}
	out := make(map[string][]byte, len(parts))
	for name, body := range parts {
		out[name] = body
	}
	return out, nil
}

// writeCollections upserts every collection whose encoding differs from prev.
func (s *SQLStore) writeCollections(ctx context.Context, ex execer, doc *models.Document, prev map[string][]byte) error {
	enc, err := encodeCollections(doc)
	if err != nil {
		return err
	}
	for _, name := range memberNames(enc) {
		body := enc[name]
		if old, ok := prev[name]; ok && bytes.Equal(old, body) {
			continue
		}
		if _, err := ex.ExecContext(ctx, s.upsertQuery(), name, string(body)); err != nil {
			return fmt.Errorf("write %s: %v: %w", name, err, apperr.ErrStoreIO)
		}
	}
	return nil
}

// memberNames lists the collections first, then any other kept members sorted.
func memberNames(enc map[string][]byte) []string {
	names := append([]string(nil), collectionNames...)
	var rest []string
	for name := range enc {
		if !slices.Contains(collectionNames, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func (s *SQLStore) Load(ctx context.Context) (*models.Document, error) {
	doc, _, err := s.readCollections(ctx, s.db, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLStore) Save(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %v: %w", err, apperr.ErrStoreIO)
	}
	defer tx.Rollback()

	if err := s.writeCollections(ctx, tx, doc, nil); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %v: %w", err, apperr.ErrStoreIO)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %v: %w", err, apperr.ErrStoreIO)
	}
	defer tx.Rollback()

	doc, raw, err := s.readCollections(ctx, tx, true)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	if err := s.writeCollections(ctx, tx, doc, raw); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %v: %w", err, apperr.ErrStoreIO)
	}
	return nil
}

func (s *SQLStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
