package mediaaudit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cdn = "https://cdn.varshini.in/"

type fakeBucket struct {
	keys    []string
	deleted []string
}

func (f *fakeBucket) List(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeBucket) Delete(_ context.Context, keys []string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeBucket) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, cdn) {
		return "", false
	}
	return strings.TrimPrefix(url, cdn), true
}

func seeded(t *testing.T) store.DocumentStore {
	t.Helper()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, st.Update(context.Background(), func(d *models.Document) error {
		d.Products = []models.Product{
			{ID: 1, Name: "A", Image: cdn + "products/a.jpg"},
			{ID: 2, Name: "B", Image: cdn + "products/gone.jpg"},
			{ID: 3, Name: "C", Image: "uploads/local.jpg"},
			{ID: 4, Name: "D", Image: models.DefaultProductImage},
		}
		return nil
	}))
	return st
}

func TestAuditor_Run(t *testing.T) {
	b := &fakeBucket{keys: []string{"products/a.jpg", "products/stale.jpg", "banners/x.jpg"}}
	res, err := New(seeded(t), b).Run(context.Background(), Event{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.CheckedS3)
	assert.Equal(t, []Finding{{Kind: KindOrphan, Key: "products/stale.jpg"}}, res.Orphans)
	assert.Equal(t, []Finding{{Kind: KindMissing, Key: "products/gone.jpg"}}, res.Missing)
	assert.Zero(t, res.Deleted)
	assert.Empty(t, b.deleted)
}

func TestAuditor_DeleteOrphans(t *testing.T) {
	b := &fakeBucket{keys: []string{"products/a.jpg", "products/stale.jpg"}}
	res, err := New(seeded(t), b).Run(context.Background(), Event{DeleteOrphans: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, []string{"products/stale.jpg"}, b.deleted)
}

func TestAuditor_CorruptStoreAborts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	b := &fakeBucket{keys: []string{"products/a.jpg"}}
	_, err := New(store.NewFileStore(path), b).Run(context.Background(), Event{DeleteOrphans: true})
	assert.ErrorIs(t, err, apperr.ErrStoreIO)
	assert.Empty(t, b.deleted)
}
