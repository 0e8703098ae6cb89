package middlewares

import (
	"net/http"
	"time"

	"gameforum/controller"
	"gameforum/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// RateLimitMiddleware is a token bucket shared by all clients: one token
// every fillInterval, bursts up to capacity. Rejected requests get 429.
func RateLimitMiddleware(fillInterval time.Duration, capacity int64) gin.HandlerFunc {
	bucket := ratelimit.NewBucket(fillInterval, capacity)
	return func(c *gin.Context) {
		if bucket.TakeAvailable(1) < 1 {
			// Not ResponseError: that always answers 200.
			c.JSON(http.StatusTooManyRequests, &controller.ResponseData{
				Code: errorx.ErrRateLimitExceeded.Code,
				Msg:  errorx.ErrRateLimitExceeded.Msg,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
