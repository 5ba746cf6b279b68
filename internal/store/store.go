package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
)

// DocumentStore persists the whole catalog document.
//
// Update runs fn against a freshly loaded document and saves the result.
// Calls to Update on the same store never interleave, so concurrent mutations
// cannot overwrite each other. When fn returns an error nothing is written.
type DocumentStore interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, fn func(doc *models.Document) error) error
	Health(ctx context.Context) error
	Close() error
}

// Snapshot loads the document for read-only use. A store that cannot be read
// yields an empty document and an error log instead of failing the request;
// mutations still refuse to run against it.
func Snapshot(ctx context.Context, s DocumentStore) (*models.Document, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrStoreIO) && doc != nil {
			slog.ErrorContext(ctx, "store unreadable, serving empty document", "error", err)
			return doc, nil
		}
		return nil, err
	}
	return doc, nil
}

// reportProblems logs records that were kept verbatim because they could not
// be decoded. They stay in the store untouched.
func reportProblems(ctx context.Context, source string, doc *models.Document) {
	for _, p := range doc.Problems() {
		slog.WarnContext(ctx, "store record kept as-is", "source", source, "problem", p)
	}
}
