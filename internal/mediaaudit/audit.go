// Package mediaaudit reconciles product images in S3 with the catalog.
package mediaaudit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/store"
	"github.com/Arisudan/Varshini-Industrries/internal/storage"
)

const (
	KindOrphan  = "orphan_in_s3"
	KindMissing = "missing_in_s3"
)

// Bucket is the object store being audited. *storage.S3Uploader satisfies it.
type Bucket interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, keys []string) error
	KeyFromURL(url string) (string, bool)
}

// Event is the invocation payload.
type Event struct {
	Prefix        string `json:"prefix"`
	DeleteOrphans bool   `json:"delete_orphans"`
}

type Finding struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
}

type Result struct {
	CheckedS3 int       `json:"checked_s3"`
	Orphans   []Finding `json:"orphans"`
	Missing   []Finding `json:"missing"`
	Deleted   int       `json:"deleted"`
}

type Auditor struct {
	store  store.DocumentStore
	bucket Bucket
}

func New(s store.DocumentStore, b Bucket) *Auditor {
	return &Auditor{store: s, bucket: b}
}

// Run lists objects under the prefix and compares them with product image
// references. The store is read strictly: an unreadable store aborts the
// audit rather than reporting every object as an orphan.
func (a *Auditor) Run(ctx context.Context, ev Event) (Result, error) {
	res := Result{Orphans: []Finding{}, Missing: []Finding{}}
	prefix := ev.Prefix
	if prefix == "" {
		prefix = storage.ProductPrefix
	}

	doc, err := a.store.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("load catalog: %w", err)
	}
	referenced := map[string]bool{}
	for _, p := range doc.Products {
		if key, ok := a.bucket.KeyFromURL(p.Image); ok && strings.HasPrefix(key, prefix) {
			referenced[key] = true
		}
	}

	keys, err := a.bucket.List(ctx, prefix)
	if err != nil {
		return res, err
	}
	res.CheckedS3 = len(keys)
	present := make(map[string]bool, len(keys))
	var orphans []string
	for _, k := range keys {
		present[k] = true
		if !referenced[k] {
			orphans = append(orphans, k)
			res.Orphans = append(res.Orphans, Finding{Kind: KindOrphan, Key: k})
		}
	}
	for k := range referenced {
		if !present[k] {
			res.Missing = append(res.Missing, Finding{Kind: KindMissing, Key: k})
		}
	}
	sort.Slice(res.Missing, func(i, j int) bool { return res.Missing[i].Key < res.Missing[j].Key })

	if ev.DeleteOrphans && len(orphans) > 0 {
		if err := a.bucket.Delete(ctx, orphans); err != nil {
			return res, err
		}
		res.Deleted = len(orphans)
	}

	slog.Info("media audit",
		"prefix", prefix,
		"s3_checked", res.CheckedS3,
		"orphans", len(res.Orphans),
		"missing", len(res.Missing),
		"deleted", res.Deleted)
	return res, nil
}
