package api

import (
	"context"                   // Context for Redis operations
	"growth_hub/internal/utils" // Utility functions
	"strconv"                   // String conversion
	"strings"                   // String manipulation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

const (
	defaultPageSize = 20  // Page size when none is given
	maxPageSize     = 100 // Largest page size a caller may ask for
)

// pagination reads page and page_size from the query, falling back to defaults
func pagination(c *gin.Context) (page, pageSize int) {
	page = 1                   // Default page number
	pageSize = defaultPageSize // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= maxPageSize {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// totalPages rounds total up to whole pages
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}

// currentUserID returns the authenticated user's ID set by the JWT middleware
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// pathID parses the :id route parameter
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// userKey builds a per-user cache key such as wallet:user:7
func userKey(prefix string, userID uint) string {
	return prefix + ":user:" + strconv.FormatUint(uint64(userID), 10)
}

// dashboardKey is the cached dashboard for a user
func dashboardKey(userID uint) string {
	return userKey("dashboard", userID)
}

// invalidate drops cached entries after a write. Failures only cost freshness.
func invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	for _, key := range keys {
		var err error
		if strings.HasSuffix(key, ":") {
			err = utils.DeleteCachePrefix(ctx, rdb, key) // Trailing colon marks a prefix
		} else {
			err = utils.DeleteCache(ctx, rdb, key)
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"key":   key,
				"error": err.Error(),
			}).Warn("Cache invalidation failed")
		}
	}
}
