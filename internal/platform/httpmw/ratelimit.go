package httpmw

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apierrors "github.com/potgreen/nursery-backend/internal/shared/errors"
)

// RateLimit rejects requests beyond rps (with the given burst) with a 429
// problem. A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			apierrors.Respond(c, apierrors.ErrTooManyRequests.WithDetail("request rate exceeded, retry later"))
			return
		}
		c.Next()
	}
}
