package grossnet

import (
	"vn-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	calc := r.Group("/gross-to-net")
	{
		calc.POST("",
			middleware.RateLimitByIP(10, 20),
			handler.Calculate,
		)
		calc.GET("", handler.Example)
		calc.HEAD("", handler.Head)
		calc.GET("/rules", handler.Rules)
		calc.GET("/stats",
			middleware.RateLimitByIP(5, 10),
			handler.Stats,
		)
	}
}
