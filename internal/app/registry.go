package app

import (
	"database/sql"

	"vn-payroll/internal/batch"
	"vn-payroll/internal/grossnet"
	"vn-payroll/internal/history"
	"vn-payroll/internal/messaging/kafka"
	"vn-payroll/internal/middleware"
	"vn-payroll/internal/shared/counter"
	"vn-payroll/internal/taxrules"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	rules *taxrules.RuleSet,
) {
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	calc := grossnet.NewCalculator(rules)

	// --- Repositories & Services ---
	var historyService history.Service
	if gormDB != nil {
		historyService = history.NewService(history.NewRepository(gormDB), rdb)
	}

	var outboxRepo kafka.OutboxRepository
	if db != nil {
		outboxRepo = kafka.NewOutboxRepository(db)
	}

	var counterRepo counter.Repository
	if rdb != nil {
		counterRepo = counter.NewRepository(rdb)
	}

	grossnetService := grossnet.NewService(db, calc, historyService, outboxRepo, counterRepo)
	batchService := batch.NewService(db, calc, historyService, outboxRepo)

	// --- Handlers ---
	grossnetHandler := grossnet.NewHandler(grossnetService)
	batchHandler := batch.NewHandler(batchService, rdb)

	// --- Routes ---
	api := router.Group("/api/v1")
	{
		grossnet.RegisterRoutes(api, grossnetHandler)
		batch.RegisterRoutes(api, batchHandler, rdb)
		if historyService != nil {
			history.RegisterRoutes(api, history.NewHandler(historyService))
		}
	}
}
