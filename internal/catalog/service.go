package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
)

// Service serves the public catalog and product mutations.
type Service struct {
	store store.DocumentStore
	now   func() time.Time
}

func NewService(s store.DocumentStore) *Service {
	return &Service{store: s, now: time.Now}
}

// CategoryView is the result of a category filter.
type CategoryView struct {
	Category   string           `json:"category"`
	ComingSoon bool             `json:"coming_soon"`
	Products   []models.Product `json:"products"`
}

// ListPublicProducts returns every product.
func (s *Service) ListPublicProducts(ctx context.Context) ([]models.Product, error) {
	doc, err := store.Snapshot(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id models.NumericID) (models.Product, error) {
	products, err := s.ListPublicProducts(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
}

func (s *Service) FilterByCategory(ctx context.Context, category string) (CategoryView, error) {
	if IsComingSoon(category) {
		return CategoryView{Category: category, ComingSoon: true, Products: []models.Product{}}, nil
	}
	products, err := s.ListPublicProducts(ctx)
	if err != nil {
		return CategoryView{}, err
	}
	return CategoryView{Category: category, Products: FilterByCategory(products, category)}, nil
}

func (s *Service) Search(ctx context.Context, q string) ([]models.Product, error) {
	products, err := s.ListPublicProducts(ctx)
	if err != nil {
		return nil, err
	}
	return Search(products, q), nil
}

// FindBySpec returns products matching the supplied pipe size and/or power rating.
func (s *Service) FindBySpec(ctx context.Context, q SpecQuery) ([]models.Product, error) {
	if q.empty() {
		return nil, fmt.Errorf("select a pipe size or power rating: %w", apperr.ErrValidation)
	}
	products, err := s.ListPublicProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0)
	for _, p := range products {
		if MatchSpec(p, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) SpecOptions(ctx context.Context) (SpecOptions, error) {
	products, err := s.ListPublicProducts(ctx)
	if err != nil {
		return SpecOptions{}, err
	}
	return collectSpecOptions(products), nil
}

// Create adds a product with a fresh id. Missing images fall back to the placeholder.
func (s *Service) Create(ctx context.Context, in models.ProductInput) (models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return models.Product{}, fmt.Errorf("product name is required: %w", apperr.ErrValidation)
	}
	var created models.Product
	err := s.store.Update(ctx, func(doc *models.Document) error {
		p := models.Product{}
		if err := in.Apply(&p); err != nil {
			return err
		}
		if p.Image == "" {
			p.Image = models.DefaultProductImage
		}
		p.ID = models.NewNumericID(s.now(), func(id models.NumericID) bool { return doc.ProductIndex(id) >= 0 })
		doc.Products = append(doc.Products, p)
		created = p
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return created, nil
}

// Update merges in into the product with the given id.
func (s *Service) Update(ctx context.Context, id models.NumericID, in models.ProductInput) (models.Product, error) {
	var updated models.Product
	err := s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.ProductIndex(id)
		if i < 0 {
			return fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
		}
		p := doc.Products[i]
		if err := in.Apply(&p); err != nil {
			return err
		}
		p.ID = id
		doc.Products[i] = p
		updated = p
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

// Delete removes the product and returns it so callers can clean up its image.
func (s *Service) Delete(ctx context.Context, id models.NumericID) (models.Product, error) {
	var removed models.Product
	err := s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.ProductIndex(id)
		if i < 0 {
			return fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
		}
		removed = doc.Products[i]
		doc.Products = append(doc.Products[:i], doc.Products[i+1:]...)
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return removed, nil
}

// ImageInUse reports whether any product still refers to url.
func (s *Service) ImageInUse(ctx context.Context, url string) (bool, error) {
	doc, err := store.Snapshot(ctx, s.store)
	if err != nil {
		return false, err
	}
	for _, p := range doc.Products {
		if p.Image == url {
			return true, nil
		}
	}
	return false, nil
}
