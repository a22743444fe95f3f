package api

import (
	"growth_hub/internal/domain" // Importing domain models
	"net/http"                   // HTTP status codes
	"strings"                    // String manipulation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CampaignRequest is the body for creating or updating a campaign; nil fields are left untouched
type CampaignRequest struct {
	Name      *string  `json:"name"`      // Campaign name
	Channel   *string  `json:"channel"`   // Ad channel, e.g. instagram
	Objective *string  `json:"objective"` // What the campaign should achieve
	Budget    *float64 `json:"budget"`    // Planned budget
	Status    *string  `json:"status"`    // draft, active, paused or completed
	StartsAt  *int64   `json:"starts_at"` // Planned start in milliseconds
	EndsAt    *int64   `json:"ends_at"`   // Planned end in milliseconds
}

func isCampaignStatus(s string) bool {
	switch s {
	case domain.CampaignDraft, domain.CampaignActive, domain.CampaignPaused, domain.CampaignCompleted:
		return true
	}
	return false
}

// validate checks field limits against the campaign the request will produce
func (r *CampaignRequest) validate(creating bool, current domain.Campaign) string {
	if creating && (r.Name == nil || strings.TrimSpace(*r.Name) == "") {
		return "Name is required"
	}
	if creating && (r.Channel == nil || strings.TrimSpace(*r.Channel) == "") {
		return "Channel is required"
	}
	if r.Name != nil && (strings.TrimSpace(*r.Name) == "" || len(*r.Name) > 200) {
		return "Name must be 1-200 characters"
	}
	if r.Channel != nil && (strings.TrimSpace(*r.Channel) == "" || len(*r.Channel) > 30) {
		return "Channel must be 1-30 characters"
	}
	if r.Objective != nil && len(*r.Objective) > 2000 {
		return "Objective must be at most 2000 characters"
	}
	if r.Budget != nil && *r.Budget < 0 {
		return "Budget must not be negative"
	}
	if r.Status != nil && !isCampaignStatus(*r.Status) {
		return "Status must be draft, active, paused or completed"
	}
	starts, ends := current.StartsAt, current.EndsAt
	if r.StartsAt != nil {
		starts = r.StartsAt
	}
	if r.EndsAt != nil {
		ends = r.EndsAt
	}
	if starts != nil && ends != nil && *ends < *starts {
		return "Campaign must end after it starts"
	}
	return ""
}

// apply copies the set fields onto c and returns their column names
func (r *CampaignRequest) apply(c *domain.Campaign) []string {
	var cols []string
	if r.Name != nil {
		c.Name = strings.TrimSpace(*r.Name)
		cols = append(cols, "name")
	}
	if r.Channel != nil {
		c.Channel = strings.ToLower(strings.TrimSpace(*r.Channel))
		cols = append(cols, "channel")
	}
	if r.Objective != nil {
		c.Objective = *r.Objective
		cols = append(cols, "objective")
	}
	if r.Budget != nil {
		c.Budget = *r.Budget
		cols = append(cols, "budget")
	}
	if r.Status != nil {
		c.Status = *r.Status
		cols = append(cols, "status")
	}
	if r.StartsAt != nil {
		c.StartsAt = r.StartsAt
		cols = append(cols, "starts_at")
	}
	if r.EndsAt != nil {
		c.EndsAt = r.EndsAt
		cols = append(cols, "ends_at")
	}
	return cols
}

// CreateCampaignHandler adds a draft campaign owned by the caller
func CreateCampaignHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CampaignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		campaign := domain.Campaign{OwnerID: userID, Status: domain.CampaignDraft}
		if msg := req.validate(true, campaign); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		req.apply(&campaign)
		if err := db.Create(&campaign).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Failed to create campaign")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,           // Owner
			"campaign_id": campaign.ID,      // New campaign
			"channel":     campaign.Channel, // Ad channel
		}).Info("Campaign created")
		invalidate(c.Request.Context(), rdb, dashboardKey(userID))
		c.JSON(http.StatusCreated, gin.H{"campaign": campaign})
	}
}

// ListCampaignsHandler returns the caller's campaigns, optionally filtered by status
func ListCampaignsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := pagination(c)
		query := db.Model(&domain.Campaign{}).Where("owner_id = ?", userID)
		if status := c.Query("status"); status != "" {
			if !isCampaignStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
				return
			}
			query = query.Where("status = ?", status)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count campaigns"})
			return
		}
		var campaigns []domain.Campaign
		if err := query.Order("created_at desc, id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&campaigns).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch campaigns"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"campaigns":   campaigns,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}

// GetCampaignHandler returns one of the caller's campaigns
func GetCampaignHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var campaign domain.Campaign
		if _, ok := ownedRow(c, db, &campaign); !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"campaign": campaign})
	}
}

// UpdateCampaignHandler changes the fields present in the body
func UpdateCampaignHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var campaign domain.Campaign
		userID, ok := ownedRow(c, db, &campaign)
		if !ok {
			return
		}
		var req CampaignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if msg := req.validate(false, campaign); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		cols := req.apply(&campaign)
		if len(cols) > 0 {
			// Only the columns in the body; funded is written by the wallet alone
			if err := db.Model(&campaign).Select(cols).Updates(&campaign).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update campaign"})
				return
			}
		}
		if err := db.First(&campaign, campaign.ID).Error; err != nil { // Reload to report the current funded amount
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch campaign"})
			return
		}
		invalidate(c.Request.Context(), rdb, dashboardKey(userID))
		c.JSON(http.StatusOK, gin.H{"campaign": campaign})
	}
}

// DeleteCampaignHandler removes a campaign that has not been funded
func DeleteCampaignHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var campaign domain.Campaign
		userID, ok := ownedRow(c, db, &campaign)
		if !ok {
			return
		}
		// Funded campaigns are referenced by campaign_spend transactions
		res := db.Where("id = ? AND funded = 0", campaign.ID).Delete(&domain.Campaign{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete campaign"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Funded campaigns cannot be deleted"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,
			"campaign_id": campaign.ID,
		}).Info("Campaign deleted")
		invalidate(c.Request.Context(), rdb, dashboardKey(userID))
		c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted"})
	}
}
