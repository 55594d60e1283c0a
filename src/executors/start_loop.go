package executors

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradecore/src/model"
)

type signalSource interface {
	FindPending(ctx context.Context, limit int) ([]model.SignalRecord, error)
	MarkProcessed(ctx context.Context, id uint, executedAt time.Time) error
}

type signalExecutor interface {
	ExecuteSignal(ctx context.Context, signal model.TradeSignal, notionalOverride *float64) model.ExecutionResult
}

// StartLoop polls the signal queue and routes each pending signal through the
// engine exactly once. Signals are marked processed whatever the outcome;
// retry policy belongs to the producer, not this loop.
func StartLoop(ctx context.Context, signals signalSource, eng signalExecutor) error {
	config := GetConfig()

	ticker := time.NewTicker(config.LoopPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("executor loop stopped")
			return nil

		case <-ticker.C:
			if err := runBatch(ctx, signals, eng, config.BatchSize); err != nil {
				logger.WithError(err).Error("signal batch failed, will retry next tick")
			}
		}
	}
}

func runBatch(ctx context.Context, signals signalSource, eng signalExecutor, batchSize int) error {
	batch, err := signals.FindPending(ctx, batchSize)
	if err != nil {
		return err
	}

	for i := range batch {
		record := batch[i]

		action := model.SignalAction(record.Action)
		if action != model.ActionBuy && action != model.ActionSell {
			// HOLD and unknown actions never reach the engine.
			logger.WithFields(logger.Fields{
				"signal_id": record.ID,
				"action":    record.Action,
			}).Info("skipping non-tradable signal")

			if err := signals.MarkProcessed(ctx, record.ID, time.Now().UTC()); err != nil {
				logger.WithError(err).WithField("signal_id", record.ID).
					Error("failed to mark signal processed")
			}
			continue
		}

		result := eng.ExecuteSignal(ctx, record.ToTradeSignal(), nil)

		logger.WithFields(logger.Fields{
			"signal_id": record.ID,
			"symbol":    record.Symbol,
			"executed":  result.Executed,
			"outcome":   result.Outcome,
			"reason":    result.Reason,
		}).Info("signal processed")

		if err := signals.MarkProcessed(ctx, record.ID, time.Now().UTC()); err != nil {
			logger.WithError(err).WithField("signal_id", record.ID).
				Error("failed to mark signal processed")
		}
	}

	return nil
}
