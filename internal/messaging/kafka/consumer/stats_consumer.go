package consumer

import (
	"context"
	"encoding/json"

	"vn-payroll/internal/events"
	"vn-payroll/internal/shared/counter"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeCalculationStats aggregates calculation events into per-region
// counters. A counter increment is idempotent enough for statistics, so
// messages are committed after a successful increment and skipped (but
// committed) when the payload cannot be decoded.
func ConsumeCalculationStats(
	ctx context.Context,
	reader *kafkago.Reader,
	counters counter.Repository,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.calculation_stats")
	log.Info("calculation stats consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("calculation stats consumer stopped")
				return
			}
			log.Error("fetch calculation event failed", zap.Error(err))
			continue
		}

		var event events.CalculationPerformedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode calculation_performed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		total, err := counters.IncrementRegion(ctx, event.Region)
		if err != nil {
			log.Error("increment region counter failed",
				zap.Int("region", event.Region),
				zap.String("calculation_id", event.CalculationID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit calculation event failed", zap.Error(err))
			continue
		}

		log.Debug("region counter updated",
			zap.Int("region", event.Region),
			zap.Int64("total", total),
		)
	}
}
