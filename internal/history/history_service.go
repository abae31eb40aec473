package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const batchRunsCacheKey = "history:batch_runs:recent"

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

//go:generate mockgen -source=history_service.go -destination=mock/history_service_mock.go -package=mock
type Service interface {
	RecordCalculation(ctx context.Context, record *CalculationRecord) error
	RecordBatchRun(ctx context.Context, run *BatchRun) error
	RecentCalculations(ctx context.Context, limit int) ([]CalculationRecordResponse, error)
	RecentBatchRuns(ctx context.Context, limit int) ([]BatchRunResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("history.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("history.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) RecordCalculation(ctx context.Context, record *CalculationRecord) error {
	if err := s.repo.CreateCalculation(ctx, record); err != nil {
		s.logger.Error("persist calculation record failed",
			zap.String("calculation_id", record.ID.String()),
			zap.Error(err),
		)
		return mapRepositoryError(err)
	}

	return nil
}

func (s *service) RecordBatchRun(ctx context.Context, run *BatchRun) error {
	if err := s.repo.CreateBatchRun(ctx, run); err != nil {
		s.logger.Error("persist batch run failed",
			zap.String("batch_id", run.ID.String()),
			zap.Error(err),
		)
		return mapRepositoryError(err)
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, batchRunsCacheKey).Err(); err != nil {
			s.logger.Error("invalidate batch runs cache failed",
				zap.String("key", batchRunsCacheKey),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("batch run recorded",
		zap.String("batch_id", run.ID.String()),
		zap.String("file_name", run.FileName),
		zap.Int("total_rows", run.TotalRows),
		zap.Int("error_rows", run.ErrorRows),
	)

	return nil
}

func (s *service) RecentCalculations(ctx context.Context, limit int) ([]CalculationRecordResponse, error) {
	limit = clampLimit(limit)

	records, err := s.repo.FindRecentCalculations(ctx, limit)
	if err != nil {
		s.logger.Error("list recent calculations failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	resp := make([]CalculationRecordResponse, len(records))
	for i, record := range records {
		resp[i] = mapCalculationToResponse(record)
	}
	return resp, nil
}

// RecentBatchRuns serves the dashboard listing; reads go through a redis
// cache with singleflight so a burst of polling clients produces one
// database query. The cache is invalidated by RecordBatchRun.
func (s *service) RecentBatchRuns(ctx context.Context, limit int) ([]BatchRunResponse, error) {
	limit = clampLimit(limit)

	if s.rdb != nil && limit == defaultListLimit {
		if cached, err := s.rdb.Get(ctx, batchRunsCacheKey).Result(); err == nil {
			var resp []BatchRunResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(batchRunsCacheKey, func() (interface{}, error) {
		runs, err := s.repo.FindRecentBatchRuns(ctx, limit)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]BatchRunResponse, len(runs))
		for i, run := range runs {
			resp[i] = mapBatchRunToResponse(run)
		}

		if s.rdb != nil && limit == defaultListLimit {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, batchRunsCacheKey, jsonData, 5*time.Minute)
			}
		}

		return resp, nil
	})

	if err != nil {
		s.logger.Error("list recent batch runs failed", zap.Error(err))
		return nil, err
	}

	return v.([]BatchRunResponse), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func mapCalculationToResponse(record CalculationRecord) CalculationRecordResponse {
	return CalculationRecordResponse{
		ID:                record.ID.String(),
		GrossIncome:       record.GrossIncome,
		NumDependents:     record.NumDependents,
		Region:            record.Region,
		NetIncome:         record.NetIncome,
		PersonalIncomeTax: record.PersonalIncomeTax,
		TotalInsurance:    record.TotalInsurance,
		TaxableIncome:     record.TaxableIncome,
		PreTaxIncome:      record.PreTaxIncome,
		RuleVersion:       record.RuleVersion,
		CreatedAt:         record.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapBatchRunToResponse(run BatchRun) BatchRunResponse {
	return BatchRunResponse{
		ID:          run.ID.String(),
		FileName:    run.FileName,
		TotalRows:   run.TotalRows,
		SuccessRows: run.SuccessRows,
		ErrorRows:   run.ErrorRows,
		DurationMS:  run.DurationMS,
		RuleVersion: run.RuleVersion,
		CreatedAt:   run.CreatedAt.UTC().Format(time.RFC3339),
	}
}
