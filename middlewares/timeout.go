package middlewares

import (
	"context"
	"errors"
	"time"

	"gameforum/controller"
	"gameforum/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// TimeoutMiddleware puts a deadline on the request context so storage
// calls of an abandoned request stop early. Handlers run on the request
// goroutine; if the deadline passed and nothing was written yet the
// client gets ErrTimeout.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			controller.ResponseError(c, errorx.ErrTimeout)
		}
	}
}
