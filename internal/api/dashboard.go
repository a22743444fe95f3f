package api

import (
	"growth_hub/internal/domain" // Importing domain models
	"growth_hub/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes
	"time"                       // Month boundaries and TTL

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// DashboardStats aggregates what the seller dashboard shows
type DashboardStats struct {
	Products          int64            `json:"products"`            // Products owned
	ActiveProducts    int64            `json:"active_products"`     // Products listed on the marketplace
	Services          int64            `json:"services"`            // Services owned
	ActiveServices    int64            `json:"active_services"`     // Services listed on the marketplace
	Campaigns         int64            `json:"campaigns"`           // Campaigns owned
	CampaignsByStatus map[string]int64 `json:"campaigns_by_status"` // Campaign count per status
	CampaignBudget    float64          `json:"campaign_budget"`     // Sum of planned budgets
	CampaignFunded    float64          `json:"campaign_funded"`     // Sum moved in from the wallet
	WalletBalance     float64          `json:"wallet_balance"`      // Zero when no wallet exists
	GenerationsMonth  int64            `json:"generations_month"`   // AI generations since the 1st, UTC
	Cached            bool             `json:"cached"`              // Served from cache
}

// monthStart is the first instant of t's month in UTC, in milliseconds
func monthStart(t time.Time) int64 {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).UnixMilli()
}

// collectStats runs the dashboard aggregations for one user
func collectStats(db *gorm.DB, userID uint, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{CampaignsByStatus: map[string]int64{
		domain.CampaignDraft:     0,
		domain.CampaignActive:    0,
		domain.CampaignPaused:    0,
		domain.CampaignCompleted: 0,
	}}
	counts := []struct {
		model  any
		status string
		dest   *int64
	}{
		{&domain.Product{}, "", &stats.Products},
		{&domain.Product{}, domain.ListingActive, &stats.ActiveProducts},
		{&domain.Service{}, "", &stats.Services},
		{&domain.Service{}, domain.ListingActive, &stats.ActiveServices},
	}
	for _, cnt := range counts {
		query := db.Model(cnt.model).Where("owner_id = ?", userID)
		if cnt.status != "" {
			query = query.Where("status = ?", cnt.status)
		}
		if err := query.Count(cnt.dest).Error; err != nil {
			return nil, err
		}
	}
	var byStatus []struct {
		Status string
		Count  int64
		Budget float64
		Funded float64
	}
	if err := db.Model(&domain.Campaign{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(budget), 0) AS budget, COALESCE(SUM(funded), 0) AS funded").
		Where("owner_id = ?", userID).
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.CampaignsByStatus[row.Status] = row.Count
		stats.Campaigns += row.Count
		stats.CampaignBudget += row.Budget
		stats.CampaignFunded += row.Funded
	}
	var wallet domain.Wallet
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&wallet).Error; err != nil {
		return nil, err
	}
	stats.WalletBalance = wallet.Balance
	if err := db.Model(&domain.Generation{}).
		Where("user_id = ? AND created_at >= ?", userID, monthStart(now)).
		Count(&stats.GenerationsMonth).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// DashboardStatsHandler returns the caller's aggregated dashboard numbers
func DashboardStatsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := dashboardKey(userID)
		var cached DashboardStats
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		stats, err := collectStats(db, userID, time.Now())
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Failed to collect dashboard stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, stats, 60*time.Second) // Cache the stats for 60 seconds
		c.JSON(http.StatusOK, stats)
	}
}
