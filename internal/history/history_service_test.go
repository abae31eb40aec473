package history_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"vn-payroll/internal/history"
	"vn-payroll/internal/shared/apperror"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

const batchRunsCacheKey = "history:batch_runs:recent"

type fakeHistoryRepository struct {
	createCalculationFn      func(ctx context.Context, record *history.CalculationRecord) error
	createBatchRunFn         func(ctx context.Context, run *history.BatchRun) error
	findRecentCalculationsFn func(ctx context.Context, limit int) ([]history.CalculationRecord, error)
	findRecentBatchRunsFn    func(ctx context.Context, limit int) ([]history.BatchRun, error)
}

func (f *fakeHistoryRepository) CreateCalculation(ctx context.Context, record *history.CalculationRecord) error {
	if f.createCalculationFn != nil {
		return f.createCalculationFn(ctx, record)
	}
	return nil
}

func (f *fakeHistoryRepository) CreateBatchRun(ctx context.Context, run *history.BatchRun) error {
	if f.createBatchRunFn != nil {
		return f.createBatchRunFn(ctx, run)
	}
	return nil
}

func (f *fakeHistoryRepository) FindRecentCalculations(ctx context.Context, limit int) ([]history.CalculationRecord, error) {
	if f.findRecentCalculationsFn != nil {
		return f.findRecentCalculationsFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeHistoryRepository) FindRecentBatchRuns(ctx context.Context, limit int) ([]history.BatchRun, error) {
	if f.findRecentBatchRunsFn != nil {
		return f.findRecentBatchRunsFn(ctx, limit)
	}
	return nil, nil
}

func sampleBatchRun(createdAt time.Time) history.BatchRun {
	return history.BatchRun{
		ID:          uuid.New(),
		RequestID:   uuid.NewString(),
		FileName:    "salaries.xlsx",
		TotalRows:   10,
		SuccessRows: 9,
		ErrorRows:   1,
		DurationMS:  42,
		RuleVersion: "2025-04",
		CreatedAt:   createdAt,
	}
}

func TestRecordBatchRunInvalidatesCache(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel(batchRunsCacheKey).SetVal(1)

	repo := &fakeHistoryRepository{}
	svc := history.NewService(repo, rdb)

	run := sampleBatchRun(time.Now())
	err := svc.RecordBatchRun(context.Background(), &run)

	assert.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRecordBatchRunDuplicateRequestIsConflict(t *testing.T) {
	repo := &fakeHistoryRepository{
		createBatchRunFn: func(ctx context.Context, run *history.BatchRun) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_batch_runs_request"}
		},
	}
	svc := history.NewService(repo, nil)

	run := sampleBatchRun(time.Now())
	err := svc.RecordBatchRun(context.Background(), &run)

	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRecordCalculationRepoError(t *testing.T) {
	repo := &fakeHistoryRepository{
		createCalculationFn: func(ctx context.Context, record *history.CalculationRecord) error {
			return assert.AnError
		},
	}
	svc := history.NewService(repo, nil)

	err := svc.RecordCalculation(context.Background(), &history.CalculationRecord{ID: uuid.New()})

	assert.Error(t, err)
}

func TestRecentBatchRunsCacheHit(t *testing.T) {
	cached := []history.BatchRunResponse{{ID: uuid.NewString(), FileName: "cached.csv"}}
	payload, err := json.Marshal(cached)
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(batchRunsCacheKey).SetVal(string(payload))

	repo := &fakeHistoryRepository{
		findRecentBatchRunsFn: func(ctx context.Context, limit int) ([]history.BatchRun, error) {
			t.Fatal("repository must not be hit on a cache hit")
			return nil, nil
		},
	}
	svc := history.NewService(repo, rdb)

	resp, err := svc.RecentBatchRuns(context.Background(), 0)

	assert.NoError(t, err)
	assert.Equal(t, cached, resp)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRecentBatchRunsCacheMissStoresResult(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	run := sampleBatchRun(createdAt)

	expected := []history.BatchRunResponse{{
		ID:          run.ID.String(),
		FileName:    run.FileName,
		TotalRows:   run.TotalRows,
		SuccessRows: run.SuccessRows,
		ErrorRows:   run.ErrorRows,
		DurationMS:  run.DurationMS,
		RuleVersion: run.RuleVersion,
		CreatedAt:   "2026-08-01T12:00:00Z",
	}}
	payload, err := json.Marshal(expected)
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(batchRunsCacheKey).RedisNil()
	redisMock.ExpectSet(batchRunsCacheKey, payload, 5*time.Minute).SetVal("OK")

	repo := &fakeHistoryRepository{
		findRecentBatchRunsFn: func(ctx context.Context, limit int) ([]history.BatchRun, error) {
			assert.Equal(t, 20, limit)
			return []history.BatchRun{run}, nil
		},
	}
	svc := history.NewService(repo, rdb)

	resp, err := svc.RecentBatchRuns(context.Background(), 0)

	assert.NoError(t, err)
	assert.Equal(t, expected, resp)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRecentBatchRunsNonDefaultLimitBypassesCache(t *testing.T) {
	repo := &fakeHistoryRepository{
		findRecentBatchRunsFn: func(ctx context.Context, limit int) ([]history.BatchRun, error) {
			assert.Equal(t, 5, limit)
			return nil, nil
		},
	}
	// No redis expectations at all: the cache must not be touched.
	rdb, redisMock := redismock.NewClientMock()
	svc := history.NewService(repo, rdb)

	_, err := svc.RecentBatchRuns(context.Background(), 5)

	assert.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRecentBatchRunsClampsLimit(t *testing.T) {
	var gotLimit int
	repo := &fakeHistoryRepository{
		findRecentBatchRunsFn: func(ctx context.Context, limit int) ([]history.BatchRun, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	svc := history.NewService(repo, nil)

	_, err := svc.RecentBatchRuns(context.Background(), 10_000)

	assert.NoError(t, err)
	assert.Equal(t, 100, gotLimit)
}

func TestRecentCalculationsMapsFields(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	record := history.CalculationRecord{
		ID:                uuid.New(),
		GrossIncome:       30_000_000,
		NumDependents:     1,
		Region:            1,
		NetIncome:         25_882_500,
		PersonalIncomeTax: 967_500,
		TotalInsurance:    3_150_000,
		TaxableIncome:     11_450_000,
		PreTaxIncome:      26_850_000,
		RuleVersion:       "2025-04",
		CreatedAt:         createdAt,
	}

	repo := &fakeHistoryRepository{
		findRecentCalculationsFn: func(ctx context.Context, limit int) ([]history.CalculationRecord, error) {
			return []history.CalculationRecord{record}, nil
		},
	}
	svc := history.NewService(repo, nil)

	resp, err := svc.RecentCalculations(context.Background(), 20)

	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, record.ID.String(), resp[0].ID)
	assert.Equal(t, int64(25_882_500), resp[0].NetIncome)
	assert.Equal(t, int64(967_500), resp[0].PersonalIncomeTax)
	assert.Equal(t, "2026-08-01T09:30:00Z", resp[0].CreatedAt)
}
