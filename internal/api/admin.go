package api

import (
	"growth_hub/internal/domain" // Importing domain models
	"growth_hub/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes
	"strconv"                    // String conversion
	"strings"                    // String manipulation
	"time"                       // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

const adminCacheTTL = 60 * time.Second // Admin listings tolerate a minute of staleness

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID           uint          `json:"id"`            // User ID
	Username     string        `json:"username"`      // Username
	Role         string        `json:"role"`          // User role
	BusinessName string        `json:"business_name"` // Business display name
	Wallet       domain.Wallet `json:"wallet"`        // Associated wallet
	CreatedAt    int64         `json:"created_at"`    // Registration time in milliseconds
}

// adminPage is the cached shape shared by the admin listings
type adminPage[T any] struct {
	Items      []T   `json:"items"`       // Page of results
	Page       int   `json:"page"`        // Current page
	PageSize   int   `json:"page_size"`   // Page size
	Total      int64 `json:"total"`       // Total matching rows
	TotalPages int   `json:"total_pages"` // Total pages
	Cached     bool  `json:"cached"`      // Served from cache
}

// queryKey joins the named query parameters into a cache key
func queryKey(prefix string, c *gin.Context, params ...string) string {
	parts := make([]string, 0, len(params)) // Parts of the cache key
	for _, k := range params {
		parts = append(parts, k+"="+c.Query(k)) // Append key-value pair
	}
	return prefix + strings.Join(parts, ":")
}

// ListUsersHandler returns all users with their wallet info
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		// Create a cache key based on filters and pagination
		cacheKey := queryKey("admin:users:", c, "role", "page", "page_size")
		var cached adminPage[UserAdminResponse]
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, cached)
			return
		}
		query := db.Model(&domain.User{})
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", role) // Filter by role
		}
		var total int64 // Total user count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User // Slice to hold users
		// Preload Wallet relation, apply offset and limit for pagination
		if err := query.Preload("Wallet").Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		resp := adminPage[UserAdminResponse]{
			Items:      make([]UserAdminResponse, len(users)),
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages(total, pageSize),
		}
		// Map users to response format
		for i, u := range users {
			resp.Items[i] = UserAdminResponse{
				ID:           u.ID,           // User ID
				Username:     u.Username,     // Username
				Role:         u.Role,         // User role
				BusinessName: u.BusinessName, // Business display name
				Wallet:       u.Wallet,       // Associated wallet
				CreatedAt:    u.CreatedAt,    // Registration time
			}
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, adminCacheTTL) // Cache the response for future requests
		c.JSON(http.StatusOK, resp)
	}
}

// ListTransactionsHandler returns all transactions, with optional filtering by user, type, or date
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		cacheKey := queryKey("admin:txs:", c, "user_id", "type", "from", "to", "page", "page_size")
		var cached adminPage[domain.Transaction]
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		query := db.Model(&domain.Transaction{}) // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			// user_id names a user, transactions reference wallets
			walletIDs := db.Model(&domain.Wallet{}).Select("id").Where("user_id = ?", userID)
			query = query.Where("from_wallet_id IN (?) OR to_wallet_id IN (?)", walletIDs, walletIDs)
		}
		if txType := c.Query("type"); txType != "" {
			query = query.Where("type = ?", txType) // Filter by transaction type
		}
		if from, err := strconv.ParseInt(c.Query("from"), 10, 64); err == nil {
			query = query.Where("created_at >= ?", from) // Filter by start time in milliseconds
		}
		if to, err := strconv.ParseInt(c.Query("to"), 10, 64); err == nil {
			query = query.Where("created_at <= ?", to) // Filter by end time in milliseconds
		}
		var total int64 // Total transaction count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var txs []domain.Transaction // Slice to hold transactions
		if err := query.Order("created_at desc, id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&txs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		resp := adminPage[domain.Transaction]{
			Items:      txs,
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages(total, pageSize),
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, adminCacheTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// ListAllGenerationsHandler returns AI generations across users, filterable by user, type and status
func ListAllGenerationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pagination(c)
		query := db.Model(&domain.Generation{})
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("user_id = ?", userID)
		}
		if kind := c.Query("type"); kind != "" {
			query = query.Where("type = ?", kind)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count generations"})
			return
		}
		var gens []domain.Generation
		if err := query.Order("created_at desc, id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&gens).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch generations"})
			return
		}
		c.JSON(http.StatusOK, adminPage[domain.Generation]{
			Items:      gens,
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages(total, pageSize),
		})
	}
}
