package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
)

// FileStore keeps the document in a single pretty-printed JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Load reads the document. A missing file is a fresh install and yields an
// empty document. An unreadable or corrupt file yields an empty document
// together with an error wrapping apperr.ErrStoreIO.
func (s *FileStore) Load(ctx context.Context) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *FileStore) load(ctx context.Context) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.NewDocument(), nil
		}
		return models.NewDocument(), fmt.Errorf("read %s: %v: %w", s.path, err, apperr.ErrStoreIO)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.NewDocument(), nil
	}
	doc := &models.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return models.NewDocument(), fmt.Errorf("parse %s: %v: %w", s.path, err, apperr.ErrStoreIO)
	}
	reportProblems(ctx, s.path, doc)
	doc.Normalize()
	return doc, nil
}

// Save overwrites the file through a temp file and rename.
func (s *FileStore) Save(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

func (s *FileStore) save(ctx context.Context, doc *models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc.Normalize()
	doc.RefreshStats(time.Now())
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %v: %w", dir, err, apperr.ErrStoreIO)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %v: %w", err, apperr.ErrStoreIO)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %v: %w", err, apperr.ErrStoreIO)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %v: %w", err, apperr.ErrStoreIO)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %v: %w", s.path, err, apperr.ErrStoreIO)
	}
	return nil
}

// Update refuses to run when the file cannot be read, so a corrupt document is
// never replaced by an empty one.
func (s *FileStore) Update(ctx context.Context, fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(ctx, doc)
}

// Health reports whether the file can be read and parsed.
func (s *FileStore) Health(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

func (s *FileStore) Close() error { return nil }
