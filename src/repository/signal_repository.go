package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradecore/src/database"
	"tradecore/src/model"
)

// SignalRepository reads queued trading signals for the polling executor and
// accepts new ones from the API.
type SignalRepository struct {
	db *gorm.DB
}

func NewSignalRepository() *SignalRepository {
	logger.WithField("component", "SignalRepository").
		Info("Creating new SignalRepository with MainDB")

	return &SignalRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *SignalRepository) WithDB(db *gorm.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// Enqueue stores a signal for the executor loop to pick up.
func (r *SignalRepository) Enqueue(
	ctx context.Context,
	record *model.SignalRecord,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "SignalRepository",
		"op":     "Enqueue",
		"symbol": record.Symbol,
		"action": record.Action,
	}).Debug("Enqueueing trading signal")

	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SignalRepository",
			"op":   "Enqueue",
		}).WithError(err).Error("Failed to enqueue trading signal")

		return err
	}

	return nil
}

// FindPending returns unprocessed signals oldest first, so execution order
// follows arrival order.
func (r *SignalRepository) FindPending(
	ctx context.Context,
	limit int,
) ([]model.SignalRecord, error) {

	if limit <= 0 {
		limit = 10
	}

	var records []model.SignalRecord
	err := r.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SignalRepository",
			"op":   "FindPending",
		}).WithError(err).Error("Failed to fetch pending signals")

		return nil, err
	}

	return records, nil
}

// MarkProcessed flags a signal as consumed. Signals are consumed exactly
// once whatever the execution outcome; the engine never re-queues.
func (r *SignalRepository) MarkProcessed(
	ctx context.Context,
	id uint,
	executedAt time.Time,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.SignalRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed":   true,
			"executed_at": executedAt,
		}).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SignalRepository",
			"op":   "MarkProcessed",
			"id":   id,
		}).WithError(err).Error("Failed to mark signal processed")

		return err
	}

	return nil
}
