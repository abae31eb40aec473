package history

import (
	"vn-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	runs := r.Group("/history")
	{
		runs.GET("/calculations",
			middleware.RateLimitByIP(5, 10),
			handler.GetRecentCalculations,
		)
		runs.GET("/batches",
			middleware.RateLimitByIP(5, 10),
			handler.GetRecentBatchRuns,
		)
	}
}
