package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDoc = `{
    "users": [{"username": "admin", "password": "admin123", "name": "Admin", "role": "Owner"}],
    "products": [{"id": 1700000000000, "name": "VSP-1", "series": "V", "category": "Supersuction Pumps", "image": "uploads/a.jpg"}],
    "leads": [{"id": "abc", "date": "1/2/2026, 10:15:00 AM", "client": "Acme", "interest": "Enquiry: x...", "contact": {"email": "a@b.com", "phone": "1"}, "status": "New Lead"}],
    "stats": {"monthLeads": 3}
}`

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Products)
	assert.NotNil(t, doc.Leads)
}

func TestFileStore_RoundTripKeepsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(legacyDoc), 0644))
	s := NewFileStore(path)
	ctx := context.Background()

	first, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, first))
	second, err := s.Load(ctx)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "\n    \"users\""), "expected 4-space indentation")
}

func TestFileStore_CorruptFileRefusesMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	s := NewFileStore(path)
	ctx := context.Background()

	doc, err := s.Load(ctx)
	assert.True(t, errors.Is(err, apperr.ErrStoreIO))
	require.NotNil(t, doc)

	snap, err := Snapshot(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, snap.Products)

	called := false
	err = s.Update(ctx, func(d *models.Document) error { called = true; return nil })
	assert.True(t, errors.Is(err, apperr.ErrStoreIO))
	assert.False(t, called)

	raw, _ := os.ReadFile(path)
	assert.Equal(t, "{not json", string(raw))
}

func TestFileStore_MixedTypesStayServable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
    "users": [],
    "products": [
        {"id": 1, "name": "A", "price": "100", "description": "kept"},
        {"id": 2, "name": "B", "price": 4500, "table_data": {"head_row_vals": ["6", 12]}},
        {"id": "three", "name": "C"}
    ],
    "leads": [{"id": "007", "date": 1712345678901.5, "status": "New Lead"}],
    "stats": {}
}`), 0644))
	s := NewFileStore(path)
	ctx := context.Background()

	snap, err := Snapshot(ctx, s)
	require.NoError(t, err)
	require.Len(t, snap.Products, 2)
	assert.Equal(t, "4500", snap.Products[1].Price)
	assert.Equal(t, []float64{6, 12}, snap.Products[1].TableData.HeadRowVals)

	require.NoError(t, s.Update(ctx, func(d *models.Document) error {
		d.Products[0].Name = "A2"
		return nil
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved struct {
		Products []map[string]any `json:"products"`
		Leads    []map[string]any `json:"leads"`
		Stats    map[string]any   `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(raw, &saved))
	require.Len(t, saved.Products, 3)
	assert.Equal(t, "A2", saved.Products[0]["name"])
	assert.Equal(t, "kept", saved.Products[0]["description"])
	assert.Equal(t, "three", saved.Products[2]["id"])
	assert.Equal(t, "007", saved.Leads[0]["id"])
	assert.Equal(t, float64(2), saved.Stats["products"])

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Problems(), 1)
}

func TestFileStore_UpdateErrorWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s := NewFileStore(path)
	ctx := context.Background()

	err := s.Update(ctx, func(d *models.Document) error {
		d.Products = append(d.Products, models.Product{ID: 1, Name: "x"})
		return apperr.ErrValidation
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_ConcurrentUpdatesAreNotLost(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Update(ctx, func(d *models.Document) error {
				d.Products = append(d.Products, models.Product{ID: models.NumericID(i + 1), Name: "p"})
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Products, n)
}

func TestCopy_FileToFile(t *testing.T) {
	dir := t.TempDir()
	src := NewFileStore(filepath.Join(dir, "src.json"))
	require.NoError(t, os.WriteFile(src.Path(), []byte(legacyDoc), 0644))
	dst := NewFileStore(filepath.Join(dir, "nested", "dst.json"))

	require.NoError(t, Copy(context.Background(), src, dst))
	doc, err := dst.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Products, 1)
	assert.Equal(t, "VSP-1", doc.Products[0].Name)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mongo"})
	assert.Error(t, err)

	s, err := Open(context.Background(), Options{FilePath: filepath.Join(t.TempDir(), "x.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
}
