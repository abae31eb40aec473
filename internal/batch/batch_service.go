package batch

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"vn-payroll/internal/events"
	"vn-payroll/internal/grossnet"
	"vn-payroll/internal/history"
	"vn-payroll/internal/messaging/kafka"
	"vn-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

//go:generate mockgen -source=batch_service.go -destination=mock/batch_service_mock.go -package=mock
type Service interface {
	Process(ctx context.Context, fileName string, rows []InputRow) (BatchReport, error)
}

type service struct {
	db      *sql.DB
	calc    *grossnet.Calculator
	hist    history.Service
	outbox  kafka.OutboxRepository
	workers int
	logger  *zap.Logger
}

// NewService builds the batch processor. As with the single-calculation
// service, db/history/outbox are optional and only the calculator is
// required.
func NewService(
	db *sql.DB,
	calc *grossnet.Calculator,
	hist history.Service,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("batch.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("batch.service")
	}
	return &service{
		db:      db,
		calc:    calc,
		hist:    hist,
		outbox:  outboxRepo,
		workers: defaultWorkers,
		logger:  l,
	}
}

// Process calculates every row concurrently. Row failures never abort the
// batch: each bad row carries its own error message and the rest proceed.
// Output order always matches input order.
func (s *service) Process(ctx context.Context, fileName string, rows []InputRow) (BatchReport, error) {
	start := time.Now()

	results := make([]RowResult, len(rows))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, row := range rows {
		g.Go(func() error {
			results[i] = s.processRow(row)
			return nil
		})
	}
	g.Wait()

	report := BatchReport{
		BatchID:     uuid.NewString(),
		FileName:    fileName,
		RuleVersion: s.calc.Rules().Version,
		TotalRows:   len(results),
		DurationMS:  time.Since(start).Milliseconds(),
		Rows:        results,
	}
	for _, r := range results {
		if r.CalculationStatus == StatusSuccess {
			report.SuccessRows++
		} else {
			report.ErrorRows++
		}
	}

	s.record(ctx, report)

	s.logger.Info("batch processed",
		zap.String("batch_id", report.BatchID),
		zap.String("file_name", fileName),
		zap.Int("total_rows", report.TotalRows),
		zap.Int("error_rows", report.ErrorRows),
		zap.Int64("duration_ms", report.DurationMS),
	)

	return report, nil
}

func (s *service) processRow(row InputRow) (result RowResult) {
	result = RowResult{
		GrossIncome: row.GrossIncome,
		Dependents:  row.Dependents,
		Region:      row.Region,
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("row processing panicked",
				zap.Int("line", row.Line),
				zap.Any("panic", r),
			)
			result.CalculationStatus = StatusError
			result.ErrorMessage = "Unexpected error while processing row"
		}
	}()

	input, errMsg := parseRow(row)
	if errMsg != "" {
		result.CalculationStatus = StatusError
		result.ErrorMessage = errMsg
		return result
	}

	calc, err := s.calc.Calculate(input)
	if err != nil {
		result.CalculationStatus = StatusError
		result.ErrorMessage = err.Error()
		return result
	}

	result.CalculationStatus = StatusSuccess
	result.NetIncome = ptr(calc.NetIncome)
	result.PIT = ptr(calc.PersonalIncomeTax)
	result.TotalInsurance = ptr(calc.TotalInsuranceContribution)
	result.TaxableIncome = ptr(calc.TaxableIncome)
	result.PreTaxIncome = ptr(calc.PreTaxIncome)
	result.BHXH = ptr(calc.InsuranceBreakdown.SocialInsurance)
	result.BHYT = ptr(calc.InsuranceBreakdown.HealthInsurance)
	result.BHTN = ptr(calc.InsuranceBreakdown.UnemploymentInsurance)
	return result
}

func parseRow(row InputRow) (grossnet.CalculationInput, string) {
	var input grossnet.CalculationInput

	gross, err := strconv.ParseFloat(row.GrossIncome, 64)
	if err != nil {
		return input, fmt.Sprintf("%s must be a number, got %q", ColGrossIncome, row.GrossIncome)
	}
	if gross <= 0 {
		return input, fmt.Sprintf("%s must be greater than 0", ColGrossIncome)
	}

	deps, err := strconv.Atoi(row.Dependents)
	if err != nil {
		return input, fmt.Sprintf("%s must be a whole number, got %q", ColDependents, row.Dependents)
	}
	if deps < 0 {
		return input, fmt.Sprintf("%s must not be negative", ColDependents)
	}

	region, err := strconv.Atoi(row.Region)
	if err != nil {
		return input, fmt.Sprintf("%s must be a whole number, got %q", ColRegion, row.Region)
	}

	input.GrossIncome = gross
	input.NumDependents = deps
	input.Region = region
	return input, ""
}

func (s *service) record(ctx context.Context, report BatchReport) {
	if s.hist == nil {
		return
	}

	rid := contextutil.GetRequestID(ctx)
	if rid == "" {
		rid = report.BatchID
	}

	batchID, err := uuid.Parse(report.BatchID)
	if err != nil {
		batchID = uuid.New()
	}

	run := &history.BatchRun{
		ID:          batchID,
		RequestID:   rid,
		FileName:    report.FileName,
		TotalRows:   report.TotalRows,
		SuccessRows: report.SuccessRows,
		ErrorRows:   report.ErrorRows,
		DurationMS:  report.DurationMS,
		RuleVersion: report.RuleVersion,
	}

	if err := s.hist.RecordBatchRun(ctx, run); err != nil {
		return
	}

	if s.db == nil || s.outbox == nil {
		return
	}

	event := events.BatchCompletedEvent{
		EventType:   "batch_completed",
		RequestID:   rid,
		BatchID:     report.BatchID,
		FileName:    report.FileName,
		TotalRows:   report.TotalRows,
		SuccessRows: report.SuccessRows,
		ErrorRows:   report.ErrorRows,
		RuleVersion: report.RuleVersion,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal batch event failed", zap.String("batch_id", report.BatchID), zap.Error(err))
		return
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("batch outbox begin tx failed", zap.String("batch_id", report.BatchID), zap.Error(err))
		return
	}
	defer tx.Rollback()

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "batch",
		AggregateID:   report.BatchID,
		EventType:     event.EventType,
		Topic:         events.BatchCompletedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("batch outbox persist failed", zap.String("batch_id", report.BatchID), zap.Error(err))
		return
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("batch outbox commit failed", zap.String("batch_id", report.BatchID), zap.Error(err))
	}
}

func ptr(v int64) *int64 {
	return &v
}
