package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
)

// Uncategorized labels products without a category in the charts.
const Uncategorized = "Uncategorized"

// Service projects dashboard views from the stored collections.
type Service struct {
	store store.DocumentStore
	now   func() time.Time
}

func NewService(s store.DocumentStore) *Service {
	return &Service{store: s, now: time.Now}
}

// Snapshot is the GET /api/dashboard payload.
type Snapshot struct {
	Stats    models.Stats     `json:"stats"`
	Products []models.Product `json:"products"`
	Leads    []models.Lead    `json:"leads"`
}

// Cards are the headline numbers on the admin overview.
type Cards struct {
	TotalInquiries int `json:"totalInquiries"`
	TotalProducts  int `json:"totalProducts"`
	NewToday       int `json:"newToday"`
	Contacted      int `json:"contacted"`
}

type DayCount struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Charts feeds the admin analytics tab.
type Charts struct {
	Cards              Cards                     `json:"cards"`
	LeadsLast7Days     []DayCount                `json:"leadsLast7Days"`
	ProductsByCategory []CategoryCount           `json:"productsByCategory"`
	LeadStatus         map[models.LeadStatus]int `json:"leadStatus"`
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	doc, err := store.Snapshot(ctx, s.store)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Stats: doc.ComputeStats(s.now()), Products: doc.Products, Leads: doc.Leads}, nil
}

func (s *Service) Charts(ctx context.Context) (Charts, error) {
	doc, err := store.Snapshot(ctx, s.store)
	if err != nil {
		return Charts{}, err
	}
	now := s.now()
	return Charts{
		Cards:              ComputeCards(doc, now),
		LeadsLast7Days:     LeadsPerDay(doc.Leads, now, 7),
		ProductsByCategory: ProductsPerCategory(doc.Products),
		LeadStatus:         leadStatusCounts(doc.Leads),
	}, nil
}

func ComputeCards(doc *models.Document, now time.Time) Cards {
	c := Cards{TotalInquiries: len(doc.Leads), TotalProducts: len(doc.Products)}
	for _, l := range doc.Leads {
		if sameDay(l.Date.Time, now) {
			c.NewToday++
		}
		if l.Status == models.LeadContacted || l.Status == models.LeadSold {
			c.Contacted++
		}
	}
	return c
}

// LeadsPerDay counts leads for each of the last days calendar days, oldest first.
func LeadsPerDay(leads []models.Lead, now time.Time, days int) []DayCount {
	out := make([]DayCount, days)
	for i := 0; i < days; i++ {
		d := now.AddDate(0, 0, i-days+1)
		out[i] = DayCount{Date: d.Format("2006-01-02"), Label: d.Format("Jan 2")}
		for _, l := range leads {
			if sameDay(l.Date.Time, d) {
				out[i].Count++
			}
		}
	}
	return out
}

// ProductsPerCategory counts products per category in first-seen order.
func ProductsPerCategory(products []models.Product) []CategoryCount {
	idx := map[string]int{}
	out := make([]CategoryCount, 0)
	for _, p := range products {
		cat := strings.TrimSpace(p.Category)
		if cat == "" {
			cat = Uncategorized
		}
		i, ok := idx[cat]
		if !ok {
			i = len(out)
			idx[cat] = i
			out = append(out, CategoryCount{Category: cat})
		}
		out[i].Count++
	}
	return out
}

func leadStatusCounts(leads []models.Lead) map[models.LeadStatus]int {
	m := map[models.LeadStatus]int{models.LeadNew: 0, models.LeadContacted: 0, models.LeadSold: 0}
	for _, l := range leads {
		m[l.Status]++
	}
	return m
}

func sameDay(t, ref time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.In(ref.Location())
	return t.Year() == ref.Year() && t.YearDay() == ref.YearDay()
}
