package api

import (
	"net/http"
	"testing"
	"time"

	"growth_hub/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthStart(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	// 02:00 on March 1st in UTC+3 is still February in UTC.
	at := time.Date(2026, time.March, 1, 2, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), monthStart(at))
}

func TestDashboardStats(t *testing.T) {
	e := newTestEnv(t)
	alice, token := e.user(t, "alice", domain.RoleSeller)
	bob, _ := e.user(t, "bob", domain.RoleSeller)
	e.wallet(t, alice, 80)

	longAgo := time.Now().AddDate(-1, 0, 0).UnixMilli()
	rows := []any{
		&domain.Product{OwnerID: alice.ID, Title: "A", Status: domain.ListingActive},
		&domain.Product{OwnerID: alice.ID, Title: "B", Status: domain.ListingDraft},
		&domain.Product{OwnerID: bob.ID, Title: "C", Status: domain.ListingActive},
		&domain.Service{OwnerID: alice.ID, Title: "S", Status: domain.ListingActive},
		&domain.Campaign{OwnerID: alice.ID, Name: "one", Channel: "email", Budget: 100, Status: domain.CampaignDraft},
		&domain.Campaign{OwnerID: alice.ID, Name: "two", Channel: "email", Budget: 50, Funded: 20, Status: domain.CampaignActive},
		&domain.Campaign{OwnerID: alice.ID, Name: "three", Channel: "sms", Budget: 25, Status: domain.CampaignActive},
		&domain.Campaign{OwnerID: bob.ID, Name: "other", Channel: "sms", Budget: 999, Status: domain.CampaignActive},
		&domain.Generation{RequestID: "r1", UserID: alice.ID, Type: "chat", Status: domain.GenerationCompleted},
		&domain.Generation{RequestID: "r2", UserID: alice.ID, Type: "chat", Status: domain.GenerationCompleted, CreatedAt: longAgo},
		&domain.Generation{RequestID: "r3", UserID: bob.ID, Type: "chat", Status: domain.GenerationCompleted},
	}
	for _, row := range rows {
		require.NoError(t, e.db.Create(row).Error)
	}

	w := e.do(http.MethodGet, "/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode[DashboardStats](t, w)
	assert.EqualValues(t, 2, stats.Products)
	assert.EqualValues(t, 1, stats.ActiveProducts)
	assert.EqualValues(t, 1, stats.Services)
	assert.EqualValues(t, 1, stats.ActiveServices)
	assert.EqualValues(t, 3, stats.Campaigns)
	assert.Equal(t, map[string]int64{"draft": 1, "active": 2, "paused": 0, "completed": 0}, stats.CampaignsByStatus)
	assert.Equal(t, 175.0, stats.CampaignBudget)
	assert.Equal(t, 20.0, stats.CampaignFunded)
	assert.Equal(t, 80.0, stats.WalletBalance)
	assert.EqualValues(t, 1, stats.GenerationsMonth)
	assert.False(t, stats.Cached)

	assert.True(t, decode[DashboardStats](t, e.do(http.MethodGet, "/dashboard/stats", token, nil)).Cached)

	// Writes through the API refresh the numbers.
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/wallet/deposit", token, gin.H{"amount": 20}).Code)
	stats = decode[DashboardStats](t, e.do(http.MethodGet, "/dashboard/stats", token, nil))
	assert.False(t, stats.Cached)
	assert.Equal(t, 100.0, stats.WalletBalance)
}

func TestDashboardWithoutWallet(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.user(t, "newbie", domain.RoleInvestor)

	stats := decode[DashboardStats](t, e.do(http.MethodGet, "/dashboard/stats", token, nil))
	assert.Zero(t, stats.WalletBalance)
	assert.Zero(t, stats.Campaigns)
	assert.Len(t, stats.CampaignsByStatus, 4)
}
