package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
)

// SubmitWarranty stores a pending warranty registration.
func (s *Service) SubmitWarranty(ctx context.Context, in models.WarrantyInput) (models.NumericID, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return 0, fmt.Errorf("name and email are required: %w", apperr.ErrValidation)
	}
	var id models.NumericID
	err := s.store.Update(ctx, func(doc *models.Document) error {
		id = models.NewNumericID(s.now(), func(id models.NumericID) bool { return doc.WarrantyIndex(id) >= 0 })
		w := models.WarrantyRequest{
			ID:      id,
			Date:    models.NewTimestamp(s.now()),
			Name:    name,
			Email:   email,
			Phone:   strings.TrimSpace(in.Phone),
			City:    strings.TrimSpace(in.City),
			Product: strings.TrimSpace(in.Product),
			Address: strings.TrimSpace(in.Address),
			Message: strings.TrimSpace(in.Message),
			Status:  models.WarrantyPending,
		}
		doc.Warranties = append([]models.WarrantyRequest{w}, doc.Warranties...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Service) ListWarranties(ctx context.Context, status string) ([]models.WarrantyRequest, error) {
	doc, err := store.Snapshot(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if status == "" || strings.EqualFold(status, "all") {
		return doc.Warranties, nil
	}
	want, err := models.ParseWarrantyStatus(status)
	if err != nil {
		return nil, err
	}
	out := make([]models.WarrantyRequest, 0)
	for _, w := range doc.Warranties {
		if w.Status == want {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *Service) UpdateWarrantyStatus(ctx context.Context, id models.NumericID, status string) error {
	st, err := models.ParseWarrantyStatus(status)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.WarrantyIndex(id)
		if i < 0 {
			return fmt.Errorf("warranty %d: %w", id, apperr.ErrNotFound)
		}
		doc.Warranties[i].Status = st
		return nil
	})
}

func (s *Service) DeleteWarranty(ctx context.Context, id models.NumericID) error {
	return s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.WarrantyIndex(id)
		if i < 0 {
			return fmt.Errorf("warranty %d: %w", id, apperr.ErrNotFound)
		}
		doc.Warranties = append(doc.Warranties[:i], doc.Warranties[i+1:]...)
		return nil
	})
}
