package middlewares

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"civicpulse-be/config"

	"github.com/gin-gonic/gin"
)

// ReportRateLimiter caps how many issues one user may submit per day. The
// limit comes from REPORT_DAILY_LIMIT, falling back to the given default.
func ReportRateLimiter(defaultLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, _ := c.Get("user_id")
		userID, ok := userIDVal.(string)
		if !ok || userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		limit := defaultLimit
		if envLimit, err := strconv.Atoi(os.Getenv("REPORT_DAILY_LIMIT")); err == nil && envLimit > 0 {
			limit = envLimit
		}

		ctx := config.Ctx
		userKey := "report_limit:" + userID

		// Increment user's count with TTL
		count, err := config.RedisClient.Incr(ctx, userKey).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			if err := config.RedisClient.Expire(ctx, userKey, 24*time.Hour).Err(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := config.RedisClient.TTL(ctx, userKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "daily report limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
