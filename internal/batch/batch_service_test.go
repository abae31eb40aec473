package batch_test

import (
	"context"
	"strconv"
	"testing"

	"vn-payroll/internal/batch"
	"vn-payroll/internal/grossnet"
	"vn-payroll/internal/history"

	"github.com/stretchr/testify/assert"
)

type fakeHistoryService struct {
	recordBatchRunFn func(ctx context.Context, run *history.BatchRun) error
	recorded         []*history.BatchRun
}

func (f *fakeHistoryService) RecordCalculation(ctx context.Context, record *history.CalculationRecord) error {
	return nil
}

func (f *fakeHistoryService) RecordBatchRun(ctx context.Context, run *history.BatchRun) error {
	f.recorded = append(f.recorded, run)
	if f.recordBatchRunFn != nil {
		return f.recordBatchRunFn(ctx, run)
	}
	return nil
}

func (f *fakeHistoryService) RecentCalculations(ctx context.Context, limit int) ([]history.CalculationRecordResponse, error) {
	return nil, nil
}

func (f *fakeHistoryService) RecentBatchRuns(ctx context.Context, limit int) ([]history.BatchRunResponse, error) {
	return nil, nil
}

func newTestService(hist history.Service) batch.Service {
	return batch.NewService(nil, grossnet.NewCalculator(nil), hist, nil)
}

func TestProcessMixedRows(t *testing.T) {
	svc := newTestService(nil)

	rows := []batch.InputRow{
		{Line: 2, GrossIncome: "30000000", Dependents: "1", Region: "1"},
		{Line: 3, GrossIncome: "abc", Dependents: "0", Region: "1"},
		{Line: 4, GrossIncome: "20000000", Dependents: "0", Region: "1"},
		{Line: 5, GrossIncome: "25000000", Dependents: "0", Region: "5"},
	}

	report, err := svc.Process(context.Background(), "salaries.csv", rows)

	assert.NoError(t, err)
	assert.Equal(t, 4, report.TotalRows)
	assert.Equal(t, 2, report.SuccessRows)
	assert.Equal(t, 2, report.ErrorRows)
	assert.Equal(t, "salaries.csv", report.FileName)
	assert.Equal(t, "2025-04", report.RuleVersion)
	assert.NotEmpty(t, report.BatchID)
	assert.Len(t, report.Rows, 4)

	first := report.Rows[0]
	assert.Equal(t, batch.StatusSuccess, first.CalculationStatus)
	assert.Equal(t, int64(25_882_500), *first.NetIncome)
	assert.Equal(t, int64(967_500), *first.PIT)
	assert.Equal(t, int64(3_150_000), *first.TotalInsurance)
	assert.Equal(t, int64(11_450_000), *first.TaxableIncome)
	assert.Equal(t, int64(26_850_000), *first.PreTaxIncome)
	assert.Equal(t, int64(2_400_000), *first.BHXH)
	assert.Equal(t, int64(450_000), *first.BHYT)
	assert.Equal(t, int64(300_000), *first.BHTN)
	assert.Empty(t, first.ErrorMessage)

	second := report.Rows[1]
	assert.Equal(t, batch.StatusError, second.CalculationStatus)
	assert.Contains(t, second.ErrorMessage, "GrossIncome must be a number")
	assert.Nil(t, second.NetIncome)
	assert.Equal(t, "abc", second.GrossIncome)

	third := report.Rows[2]
	assert.Equal(t, batch.StatusSuccess, third.CalculationStatus)
	assert.Equal(t, int64(17_460_000), *third.NetIncome)
	assert.Equal(t, int64(440_000), *third.PIT)

	fourth := report.Rows[3]
	assert.Equal(t, batch.StatusError, fourth.CalculationStatus)
	assert.Equal(t, "Invalid region: 5. Must be 1, 2, 3, or 4.", fourth.ErrorMessage)
}

func TestProcessRowValidationMessages(t *testing.T) {
	svc := newTestService(nil)

	cases := []struct {
		name string
		row  batch.InputRow
		want string
	}{
		{"zero gross", batch.InputRow{GrossIncome: "0", Dependents: "0", Region: "1"}, "GrossIncome must be greater than 0"},
		{"negative gross", batch.InputRow{GrossIncome: "-1000", Dependents: "0", Region: "1"}, "GrossIncome must be greater than 0"},
		{"fractional dependents", batch.InputRow{GrossIncome: "20000000", Dependents: "1.5", Region: "1"}, "Dependents must be a whole number"},
		{"negative dependents", batch.InputRow{GrossIncome: "20000000", Dependents: "-1", Region: "1"}, "Dependents must not be negative"},
		{"region text", batch.InputRow{GrossIncome: "20000000", Dependents: "0", Region: "north"}, "Region must be a whole number"},
		{"region zero", batch.InputRow{GrossIncome: "20000000", Dependents: "0", Region: "0"}, "Invalid region: 0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report, err := svc.Process(context.Background(), "one.csv", []batch.InputRow{tc.row})

			assert.NoError(t, err)
			assert.Equal(t, 1, report.ErrorRows)
			assert.Equal(t, batch.StatusError, report.Rows[0].CalculationStatus)
			assert.Contains(t, report.Rows[0].ErrorMessage, tc.want)
		})
	}
}

func TestProcessSingleBadRegionRowLeavesOthersIntact(t *testing.T) {
	svc := newTestService(nil)

	rows := []batch.InputRow{
		{Line: 2, GrossIncome: "30000000", Dependents: "1", Region: "1"},
		{Line: 3, GrossIncome: "20000000", Dependents: "0", Region: "5"},
		{Line: 4, GrossIncome: "20000000", Dependents: "0", Region: "2"},
		{Line: 5, GrossIncome: "15000000", Dependents: "2", Region: "3"},
	}

	report, err := svc.Process(context.Background(), "salaries.csv", rows)

	assert.NoError(t, err)
	assert.Equal(t, 3, report.SuccessRows)
	assert.Equal(t, 1, report.ErrorRows)
	for i, row := range report.Rows {
		if i == 1 {
			assert.Equal(t, batch.StatusError, row.CalculationStatus)
			assert.NotEmpty(t, row.ErrorMessage)
			continue
		}
		assert.Equal(t, batch.StatusSuccess, row.CalculationStatus, "row %d", i)
		assert.Empty(t, row.ErrorMessage)
	}
}

func TestProcessPreservesOrderUnderConcurrency(t *testing.T) {
	svc := newTestService(nil)

	rows := make([]batch.InputRow, 200)
	for i := range rows {
		gross := 10_000_000 + int64(i)*100_000
		rows[i] = batch.InputRow{
			Line:        i + 2,
			GrossIncome: strconv.FormatInt(gross, 10),
			Dependents:  "0",
			Region:      "1",
		}
	}

	report, err := svc.Process(context.Background(), "big.csv", rows)

	assert.NoError(t, err)
	assert.Equal(t, 200, report.SuccessRows)
	for i, row := range report.Rows {
		assert.Equal(t, rows[i].GrossIncome, row.GrossIncome, "row %d out of order", i)
	}

	// Net income is monotonic in gross, so order mistakes also show here.
	for i := 1; i < len(report.Rows); i++ {
		assert.GreaterOrEqual(t, *report.Rows[i].NetIncome, *report.Rows[i-1].NetIncome)
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	svc := newTestService(nil)

	report, err := svc.Process(context.Background(), "empty.csv", nil)

	assert.NoError(t, err)
	assert.Equal(t, 0, report.TotalRows)
	assert.Empty(t, report.Rows)
}

func TestProcessRecordsBatchRun(t *testing.T) {
	hist := &fakeHistoryService{}
	svc := newTestService(hist)

	rows := []batch.InputRow{
		{Line: 2, GrossIncome: "30000000", Dependents: "1", Region: "1"},
		{Line: 3, GrossIncome: "bad", Dependents: "0", Region: "1"},
	}

	report, err := svc.Process(context.Background(), "salaries.xlsx", rows)

	assert.NoError(t, err)
	assert.Len(t, hist.recorded, 1)

	run := hist.recorded[0]
	assert.Equal(t, report.BatchID, run.ID.String())
	assert.Equal(t, "salaries.xlsx", run.FileName)
	assert.Equal(t, 2, run.TotalRows)
	assert.Equal(t, 1, run.SuccessRows)
	assert.Equal(t, 1, run.ErrorRows)
	assert.Equal(t, "2025-04", run.RuleVersion)
	assert.NotEmpty(t, run.RequestID)
}

func TestProcessHistoryFailureDoesNotFailBatch(t *testing.T) {
	hist := &fakeHistoryService{
		recordBatchRunFn: func(ctx context.Context, run *history.BatchRun) error {
			return assert.AnError
		},
	}
	svc := newTestService(hist)

	report, err := svc.Process(context.Background(), "salaries.csv", []batch.InputRow{
		{Line: 2, GrossIncome: "20000000", Dependents: "0", Region: "1"},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, report.SuccessRows)
}
