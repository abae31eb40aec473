package batch

import (
	"vn-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	group := r.Group("/gross-to-net/batch")

	// Uploads are expensive; the limiter is deliberately tight.
	handlers := []gin.HandlerFunc{middleware.RateLimitByIP(1, 3)}
	if rdb != nil {
		handlers = append(handlers, middleware.Idempotency(rdb))
	}
	handlers = append(handlers, handler.Upload)

	group.POST("", handlers...)
}
