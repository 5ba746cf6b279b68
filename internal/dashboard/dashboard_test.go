package dashboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

func lead(id string, at time.Time, status models.LeadStatus, email string) models.Lead {
	return models.Lead{ID: models.LeadID(id), Date: models.NewTimestamp(at), Status: status, Contact: models.Contact{Email: email}}
}

func fixture() *models.Document {
	return &models.Document{
		Products: []models.Product{
			{ID: 1, Category: "Supersuction Pumps"},
			{ID: 2, Category: ""},
			{ID: 3, Category: "Supersuction Pumps"},
		},
		Leads: []models.Lead{
			lead("a", now.Add(-time.Hour), models.LeadNew, "x@y.in"),
			lead("b", now.AddDate(0, 0, -2), models.LeadSold, "Dealer@y.in"),
			lead("c", now.AddDate(0, 0, -3), models.LeadSold, "dealer@y.in"),
			lead("d", now.AddDate(0, -1, 0), models.LeadContacted, ""),
			{ID: "e", Status: models.LeadNew},
		},
	}
}

func TestComputeStats(t *testing.T) {
	st := fixture().ComputeStats(now)
	assert.Equal(t, models.Stats{Dealers: 1, PendingOrders: 2, MonthLeads: 3, Products: 3}, st)
}

func TestComputeCards(t *testing.T) {
	c := ComputeCards(fixture(), now)
	assert.Equal(t, Cards{TotalInquiries: 5, TotalProducts: 3, NewToday: 1, Contacted: 3}, c)
}

func TestLeadsPerDay(t *testing.T) {
	days := LeadsPerDay(fixture().Leads, now, 7)
	require.Len(t, days, 7)
	assert.Equal(t, "2026-05-04", days[0].Date)
	assert.Equal(t, "May 10", days[6].Label)
	assert.Equal(t, 1, days[6].Count)
	assert.Equal(t, 1, days[4].Count)
	assert.Equal(t, 1, days[3].Count)
	assert.Equal(t, 0, days[5].Count)
}

func TestProductsPerCategory(t *testing.T) {
	got := ProductsPerCategory(fixture().Products)
	assert.Equal(t, []CategoryCount{{"Supersuction Pumps", 2}, {Uncategorized, 1}}, got)
}

func TestService_SnapshotIgnoresPersistedStats(t *testing.T) {
	st := store.NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	ctx := context.Background()
	require.NoError(t, st.Update(ctx, func(d *models.Document) error {
		*d = *fixture()
		d.Stats = models.Stats{MonthLeads: 99, Products: 99}
		return nil
	}))

	svc := NewService(st)
	svc.now = func() time.Time { return now }

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Stats.Products)
	assert.Equal(t, 3, snap.Stats.MonthLeads)
	assert.Len(t, snap.Leads, 5)

	charts, err := svc.Charts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, charts.LeadStatus[models.LeadSold])
	assert.Len(t, charts.LeadsLast7Days, 7)
}
