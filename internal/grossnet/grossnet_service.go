package grossnet

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"vn-payroll/internal/events"
	"vn-payroll/internal/history"
	"vn-payroll/internal/messaging/kafka"
	"vn-payroll/internal/shared/contextutil"
	"vn-payroll/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=grossnet_service.go -destination=mock/grossnet_service_mock.go -package=mock
type Service interface {
	Calculate(ctx context.Context, req CalculateRequest) (CalculateResponse, error)
	Example(ctx context.Context) (CalculateResponse, error)
	Rules(ctx context.Context) RulesResponse
	Stats(ctx context.Context) (StatsResponse, error)
}

type service struct {
	db       *sql.DB
	calc     *Calculator
	hist     history.Service
	outbox   kafka.OutboxRepository
	counters counter.Repository
	logger   *zap.Logger
}

// NewService wires the pure calculator into the platform. Everything but
// the calculator is optional: with a nil db/history/outbox the service
// degrades to calculation-only, which is also what unit tests use.
func NewService(
	db *sql.DB,
	calc *Calculator,
	hist history.Service,
	outboxRepo kafka.OutboxRepository,
	counters counter.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("grossnet.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("grossnet.service")
	}
	return &service{
		db:       db,
		calc:     calc,
		hist:     hist,
		outbox:   outboxRepo,
		counters: counters,
		logger:   l,
	}
}

func (s *service) Calculate(ctx context.Context, req CalculateRequest) (CalculateResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	numDependents := 0
	if req.NumDependents != nil {
		numDependents = *req.NumDependents
	}

	input := CalculationInput{
		GrossIncome:   req.GrossIncome,
		NumDependents: numDependents,
		Region:        req.Region,
	}

	result, err := s.calc.Calculate(input)
	if err != nil {
		s.logger.Warn("calculation rejected",
			zap.String("request_id", rid),
			zap.Int("region", req.Region),
			zap.Error(err),
		)
		return CalculateResponse{}, err
	}

	// The calculation is the product; the audit record and the stats
	// event are conveniences. Their failure is logged, never surfaced.
	s.record(ctx, rid, input, result)

	s.logger.Info("calculation served",
		zap.String("request_id", rid),
		zap.Int("region", input.Region),
		zap.Int64("gross_income", result.GrossIncome),
		zap.Int64("net_income", result.NetIncome),
	)

	return mapToResponse(result), nil
}

func (s *service) record(ctx context.Context, rid string, input CalculationInput, result CalculationResult) {
	if s.hist == nil {
		return
	}

	record := &history.CalculationRecord{
		ID:                uuid.New(),
		RequestID:         rid,
		GrossIncome:       result.GrossIncome,
		NumDependents:     input.NumDependents,
		Region:            input.Region,
		NetIncome:         result.NetIncome,
		PersonalIncomeTax: result.PersonalIncomeTax,
		TotalInsurance:    result.TotalInsuranceContribution,
		TaxableIncome:     result.TaxableIncome,
		PreTaxIncome:      result.PreTaxIncome,
		RuleVersion:       result.RuleVersion,
	}

	if err := s.hist.RecordCalculation(ctx, record); err != nil {
		return
	}

	if s.db == nil || s.outbox == nil {
		return
	}

	event := events.CalculationPerformedEvent{
		EventType:         "calculation_performed",
		RequestID:         rid,
		CalculationID:     record.ID.String(),
		Region:            input.Region,
		NumDependents:     input.NumDependents,
		GrossIncome:       result.GrossIncome,
		NetIncome:         result.NetIncome,
		PersonalIncomeTax: result.PersonalIncomeTax,
		RuleVersion:       result.RuleVersion,
		OccurredAt:        time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal calculation event failed", zap.String("request_id", rid), zap.Error(err))
		return
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("calculation outbox begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return
	}
	defer tx.Rollback()

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "calculation",
		AggregateID:   record.ID.String(),
		EventType:     event.EventType,
		Topic:         events.CalculationPerformedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("calculation outbox persist failed",
			zap.String("calculation_id", record.ID.String()),
			zap.Error(err),
		)
		return
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("calculation outbox commit failed", zap.String("request_id", rid), zap.Error(err))
	}
}

// Example returns the canonical 30M / 1 dependent / region 1 calculation.
// It never writes history: the point is a liveness probe with a body.
func (s *service) Example(ctx context.Context) (CalculateResponse, error) {
	result, err := s.calc.Calculate(CalculationInput{
		GrossIncome:   30_000_000,
		NumDependents: 1,
		Region:        1,
	})
	if err != nil {
		return CalculateResponse{}, err
	}

	return mapToResponse(result), nil
}

func (s *service) Rules(ctx context.Context) RulesResponse {
	rules := s.calc.Rules()

	wages := make(map[int]int64, len(rules.RegionalMinimumWages))
	for region, wage := range rules.RegionalMinimumWages {
		wages[region] = int64(wage)
	}

	brackets := make([]BracketResponse, len(rules.Brackets))
	for i, b := range rules.Brackets {
		br := BracketResponse{
			Rate:                b.Rate,
			CumulativeDeduction: int64(b.CumulativeDeduction),
		}
		if !math.IsInf(b.UpperLimit, 1) {
			limit := int64(b.UpperLimit)
			br.UpperLimit = &limit
		}
		brackets[i] = br
	}

	return RulesResponse{
		Version:                   rules.Version,
		PersonalAllowance:         int64(rules.PersonalAllowance),
		DependentAllowance:        int64(rules.DependentAllowance),
		SocialInsuranceRate:       rules.SocialInsuranceRate,
		HealthInsuranceRate:       rules.HealthInsuranceRate,
		UnemploymentInsuranceRate: rules.UnemploymentInsuranceRate,
		BaseSalaryForCaps:         int64(rules.BaseSalaryForCaps),
		InsuranceCapMultiplier:    rules.InsuranceCapMultiplier,
		RegionalMinimumWages:      wages,
		Brackets:                  brackets,
	}
}

func (s *service) Stats(ctx context.Context) (StatsResponse, error) {
	if s.counters == nil {
		return StatsResponse{ByRegion: map[int]int64{}}, nil
	}

	regions := s.calc.Rules().Regions()
	counts, err := s.counters.RegionCounts(ctx, regions)
	if err != nil {
		s.logger.Error("read region counters failed", zap.Error(err))
		return StatsResponse{}, err
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	return StatsResponse{
		TotalCalculations: total,
		ByRegion:          counts,
	}, nil
}

func mapToResponse(result CalculationResult) CalculateResponse {
	return CalculateResponse{
		GrossIncome:                result.GrossIncome,
		NetIncome:                  result.NetIncome,
		PersonalIncomeTax:          result.PersonalIncomeTax,
		TotalInsuranceContribution: result.TotalInsuranceContribution,
		InsuranceBreakdown: InsuranceBreakdownResponse{
			SocialInsurance:       result.InsuranceBreakdown.SocialInsurance,
			HealthInsurance:       result.InsuranceBreakdown.HealthInsurance,
			UnemploymentInsurance: result.InsuranceBreakdown.UnemploymentInsurance,
			Total:                 result.InsuranceBreakdown.Total,
		},
		TaxableIncome: result.TaxableIncome,
		PreTaxIncome:  result.PreTaxIncome,
		RuleVersion:   result.RuleVersion,
	}
}
