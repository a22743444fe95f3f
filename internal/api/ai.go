package api

import (
	"context"                       // Context for upstream calls
	"encoding/json"                 // Storing request input
	"errors"                        // Error inspection
	"fmt"                           // Quota keys
	"growth_hub/internal/assistant" // Prompt building
	"growth_hub/internal/domain"    // Importing domain models
	"growth_hub/internal/gateway"   // LLM gateway types
	"growth_hub/internal/stream"    // Event stream codec
	"growth_hub/internal/utils"     // Utility functions
	"io"                            // Upstream body
	"net/http"                      // HTTP status codes
	"strings"                       // Collecting output
	"time"                          // Quota window
	"unicode/utf8"                  // Rune boundaries

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Request identifiers
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

const quotaWindow = 24 * time.Hour // Daily quota counters expire after a day

// Upstream is the LLM gateway the generation endpoint proxies
type Upstream interface {
	Open(ctx context.Context, messages []gateway.Message) (io.ReadCloser, error) // Start a streamed completion
	Model() string                                                               // Model recorded on each generation
}

// GenerateRequest is the body of POST /ai/generate
type GenerateRequest struct {
	Type string         `json:"type" binding:"required"` // Generation type
	Data map[string]any `json:"data"`                    // Type-specific input
}

// quotaKey is the per-user counter for one UTC day
func quotaKey(userID uint, now time.Time) string {
	return fmt.Sprintf("%s:%s", userKey("ai:quota", userID), now.UTC().Format("20060102"))
}

// upstreamStatus maps an upstream failure onto the status and message returned to the caller
func upstreamStatus(err error) (int, string) {
	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.IsRateLimited():
			return http.StatusTooManyRequests, "Rate limit exceeded. Try again later."
		case gerr.IsQuotaExhausted():
			return http.StatusPaymentRequired, "AI credits exhausted. Please add funds."
		}
	}
	return http.StatusInternalServerError, "AI gateway error"
}

// GenerateHandler validates a generation request, checks the daily quota and
// streams the upstream completion back as an event stream
func GenerateHandler(db *gorm.DB, rdb *redis.Client, upstream Upstream, dailyQuota int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req GenerateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		messages, err := assistant.Build(req.Type, req.Data)
		var verr *assistant.ValidationError
		switch {
		case errors.Is(err, assistant.ErrUnknownType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown generation type", "types": assistant.Types()})
			return
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Field + " " + verr.Reason})
			return
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		ctx := c.Request.Context()
		key := quotaKey(userID, time.Now())
		if dailyQuota > 0 {
			used, err := utils.IncrCounter(ctx, rdb, key, quotaWindow)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"user_id": userID,
					"error":   err.Error(),
				}).Error("AI quota check failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Quota check failed"})
				return
			}
			if used > int64(dailyQuota) {
				c.JSON(http.StatusPaymentRequired, gin.H{"error": "Daily AI quota exhausted"})
				return
			}
		}

		input, _ := json.Marshal(req.Data) // Data came from JSON, it marshals back
		gen := domain.Generation{
			RequestID: uuid.NewString(), // Returned as X-Request-ID
			UserID:    userID,           // Requesting user
			Type:      req.Type,         // Generation type
			Model:     upstream.Model(), // Upstream model
			Input:     string(input),    // Request data
		}
		log := logrus.WithFields(logrus.Fields{
			"request_id": gen.RequestID,
			"user_id":    userID,
			"type":       req.Type,
		})

		body, err := upstream.Open(ctx, messages)
		if err != nil {
			if dailyQuota > 0 {
				_ = utils.DecrCounter(ctx, rdb, key) // Refused requests do not count
			}
			status, msg := upstreamStatus(err)
			log.WithField("error", err.Error()).Error("AI upstream refused request")
			gen.Status = domain.GenerationFailed
			gen.Error = truncate(err.Error(), 500)
			saveGeneration(db, &gen, log)
			c.JSON(status, gin.H{"error": msg})
			return
		}
		defer body.Close()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Request-ID", gen.RequestID)
		c.Status(http.StatusOK)
		c.Writer.Flush() // Send headers before the first fragment

		var out strings.Builder
		var writeErr error
		err = stream.Decode(ctx, body, func(text string) {
			out.WriteString(text)
			if writeErr != nil {
				return // Caller went away; keep collecting for the record
			}
			if writeErr = stream.WriteDelta(c.Writer, text); writeErr == nil {
				c.Writer.Flush()
			}
		}, nil, stream.WithLogger(log))

		gen.Output = out.String()
		gen.Status = domain.GenerationCompleted
		if err != nil {
			gen.Status = domain.GenerationFailed
			gen.Error = truncate(err.Error(), 500)
			log.WithField("error", err.Error()).Error("AI stream interrupted")
		}
		// Saved before [DONE] so the row exists once the caller sees the sentinel
		saveGeneration(db, &gen, log)
		invalidate(context.WithoutCancel(ctx), rdb, dashboardKey(userID))
		if err != nil {
			return // A cut stream ends without the sentinel
		}
		if writeErr == nil && stream.WriteDone(c.Writer) == nil {
			c.Writer.Flush()
		}
		log.WithField("output_bytes", out.Len()).Info("AI generation completed")
	}
}

// saveGeneration records a generation; the response is already underway so failures are only logged
func saveGeneration(db *gorm.DB, gen *domain.Generation, log *logrus.Entry) {
	if err := db.Create(gen).Error; err != nil {
		log.WithField("error", err.Error()).Error("Failed to save generation")
	}
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ListGenerationsHandler returns the caller's generation history, newest first
func ListGenerationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := pagination(c)
		query := db.Model(&domain.Generation{}).Where("user_id = ?", userID)
		if kind := c.Query("type"); kind != "" {
			query = query.Where("type = ?", kind)
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
		c.JSON(http.StatusOK, gin.H{
			"generations": gens,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}
