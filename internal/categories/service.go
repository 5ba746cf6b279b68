package categories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
)

// Service manages the category list and guards it against dangling references.
type Service struct {
	store store.DocumentStore
	now   func() time.Time
}

func NewService(s store.DocumentStore) *Service {
	return &Service{store: s, now: time.Now}
}

// List returns every category with its live product count. The first call on a
// document without categories derives them from the products and persists them.
func (s *Service) List(ctx context.Context) ([]models.CategoryCount, error) {
	doc, err := store.Snapshot(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if len(doc.Categories) == 0 && len(doc.Products) > 0 {
		err := s.store.Update(ctx, func(d *models.Document) error {
			if len(d.Categories) == 0 {
				d.Categories = derive(d.Products, s.now())
			}
			doc = d
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return counts(doc), nil
}

func derive(products []models.Product, now time.Time) []models.Category {
	seen := map[string]bool{}
	out := make([]models.Category, 0)
	next := models.NumericID(now.UnixMilli())
	for _, p := range products {
		name := strings.TrimSpace(p.Category)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.Category{ID: next, Name: name})
		next++
	}
	return out
}

func counts(doc *models.Document) []models.CategoryCount {
	n := map[string]int{}
	for _, p := range doc.Products {
		n[p.Category]++
	}
	out := make([]models.CategoryCount, 0, len(doc.Categories))
	for _, c := range doc.Categories {
		out = append(out, models.CategoryCount{ID: c.ID, Name: c.Name, Count: n[c.Name]})
	}
	return out
}

// Create adds a category. Names are unique ignoring case.
func (s *Service) Create(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, fmt.Errorf("category name is required: %w", apperr.ErrValidation)
	}
	var created models.Category
	err := s.store.Update(ctx, func(doc *models.Document) error {
		if len(doc.Categories) == 0 {
			doc.Categories = derive(doc.Products, s.now())
		}
		for _, c := range doc.Categories {
			if strings.EqualFold(c.Name, name) {
				return fmt.Errorf("category %q already exists: %w", name, apperr.ErrConflict)
			}
		}
		created = models.Category{
			ID:   models.NewNumericID(s.now(), func(id models.NumericID) bool { return doc.CategoryIndex(id) >= 0 }),
			Name: name,
		}
		doc.Categories = append(doc.Categories, created)
		return nil
	})
	if err != nil {
		return models.Category{}, err
	}
	return created, nil
}

// Delete removes a category that no product references.
func (s *Service) Delete(ctx context.Context, id models.NumericID) error {
	return s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.CategoryIndex(id)
		if i < 0 {
			return fmt.Errorf("category %d: %w", id, apperr.ErrNotFound)
		}
		name := doc.Categories[i].Name
		for _, p := range doc.Products {
			if p.Category == name {
				return fmt.Errorf("category %q is used by products: %w", name, apperr.ErrConflict)
			}
		}
		doc.Categories = append(doc.Categories[:i], doc.Categories[i+1:]...)
		return nil
	})
}
