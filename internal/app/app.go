package app

import (
	"database/sql"
	"os"

	"vn-payroll/internal/history"
	"vn-payroll/internal/shared/connection"
	"vn-payroll/internal/taxrules"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects the infrastructure and registers every route. Database
// and redis are optional: without DB_HOST the service runs in
// calculation-only mode (no history, no stats), which is all a local demo
// needs.
func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	rules, err := loadRules()
	if err != nil {
		return err
	}
	logger.Info("tax rules loaded", zap.String("version", rules.Version))

	var (
		gormDB *gorm.DB
		sqlDB  *sql.DB
	)
	if os.Getenv("DB_HOST") != "" {
		gormDB, err = connection.ConnectGORMWithRetry(
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_SSLMODE"),
			5,
		)
		if err != nil {
			return err
		}

		sqlDB, err = gormDB.DB()
		if err != nil {
			return err
		}

		if err := gormDB.AutoMigrate(
			&history.CalculationRecord{},
			&history.BatchRun{},
		); err != nil {
			return err
		}
		if err := ensureOutboxTable(sqlDB); err != nil {
			return err
		}
	} else {
		logger.Warn("DB_HOST not set, running without persistence")
	}

	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(addr, 5)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("REDIS_ADDR not set, running without cache, stats and idempotency")
	}

	registerModules(router, sqlDB, gormDB, rdb, rules)

	return nil
}

// loadRules reads the statutory constants from TAX_RULES_FILE when set,
// otherwise uses the compiled-in April 2025 rules.
func loadRules() (*taxrules.RuleSet, error) {
	path := os.Getenv("TAX_RULES_FILE")
	if path == "" {
		return taxrules.Default(), nil
	}
	return taxrules.Load(path)
}
