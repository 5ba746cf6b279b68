package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
	"github.com/google/uuid"
)

// LeadNotifier is told about every new lead.
type LeadNotifier interface {
	LeadCreated(ctx context.Context, lead models.Lead) error
}

// Service records public enquiries and warranty registrations.
type Service struct {
	store    store.DocumentStore
	notifier LeadNotifier
	now      func() time.Time
	newID    func() string
	wg       sync.WaitGroup
}

func NewService(s store.DocumentStore, notifier LeadNotifier) *Service {
	return &Service{
		store:    s,
		notifier: notifier,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Wait blocks until pending notifications have finished.
func (s *Service) Wait() { s.wg.Wait() }

// SubmitLead stores a new enquiry at the top of the lead list.
func (s *Service) SubmitLead(ctx context.Context, in models.LeadInput) (models.LeadID, error) {
	name := strings.TrimSpace(in.Name)
	message := strings.TrimSpace(in.Message)
	if name == "" || message == "" {
		return "", fmt.Errorf("name and message are required: %w", apperr.ErrValidation)
	}
	lead := models.Lead{
		ID:       models.LeadID(s.newID()),
		Date:     models.NewTimestamp(s.now()),
		Client:   name,
		Interest: models.InterestSummary(message),
		Contact:  models.Contact{Email: strings.TrimSpace(in.Email), Phone: strings.TrimSpace(in.Phone)},
		Status:   models.LeadNew,
	}
	err := s.store.Update(ctx, func(doc *models.Document) error {
		doc.Leads = append([]models.Lead{lead}, doc.Leads...)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.notify(ctx, lead)
	return lead.ID, nil
}

func (s *Service) notify(ctx context.Context, lead models.Lead) {
	if s.notifier == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.notifier.LeadCreated(nctx, lead); err != nil {
			slog.Warn("lead notification failed", "lead_id", lead.ID.String(), "error", err)
		}
	}()
}

// ListLeads returns leads, newest first, optionally filtered by status.
func (s *Service) ListLeads(ctx context.Context, status string) ([]models.Lead, error) {
	doc, err := store.Snapshot(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if status == "" || strings.EqualFold(status, "all") {
		return doc.Leads, nil
	}
	want, err := models.ParseLeadStatus(status)
	if err != nil {
		return nil, err
	}
	out := make([]models.Lead, 0)
	for _, l := range doc.Leads {
		if l.Status == want {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Service) UpdateLeadStatus(ctx context.Context, id models.LeadID, status string) error {
	st, err := models.ParseLeadStatus(status)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.LeadIndex(id)
		if i < 0 {
			return fmt.Errorf("lead %s: %w", id, apperr.ErrNotFound)
		}
		doc.Leads[i].Status = st
		return nil
	})
}

func (s *Service) DeleteLead(ctx context.Context, id models.LeadID) error {
	return s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.LeadIndex(id)
		if i < 0 {
			return fmt.Errorf("lead %s: %w", id, apperr.ErrNotFound)
		}
		doc.Leads = append(doc.Leads[:i], doc.Leads[i+1:]...)
		return nil
	})
}
