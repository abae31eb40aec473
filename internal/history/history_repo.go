package history

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=history_repo.go -destination=mock/history_repo_mock.go -package=mock
type Repository interface {
	CreateCalculation(ctx context.Context, record *CalculationRecord) error
	CreateBatchRun(ctx context.Context, run *BatchRun) error
	FindRecentCalculations(ctx context.Context, limit int) ([]CalculationRecord, error)
	FindRecentBatchRuns(ctx context.Context, limit int) ([]BatchRun, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateCalculation(ctx context.Context, record *CalculationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) CreateBatchRun(ctx context.Context, run *BatchRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) FindRecentCalculations(ctx context.Context, limit int) ([]CalculationRecord, error) {
	var records []CalculationRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *repository) FindRecentBatchRuns(ctx context.Context, limit int) ([]BatchRun, error) {
	var runs []BatchRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
