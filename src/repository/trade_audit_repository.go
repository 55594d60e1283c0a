package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradecore/src/database"
	"tradecore/src/model"
)

// TradeAuditRepository persists the per-execution audit trail and answers the
// risk guard's daily-loss query.
type TradeAuditRepository struct {
	db *gorm.DB
}

// NewTradeAuditRepository creates a new repository instance using the main
// read/write database.
func NewTradeAuditRepository() *TradeAuditRepository {
	logger.WithField("component", "TradeAuditRepository").
		Info("Creating new TradeAuditRepository with MainDB")

	return &TradeAuditRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *TradeAuditRepository) WithDB(db *gorm.DB) *TradeAuditRepository {
	return &TradeAuditRepository{db: db}
}

// Insert writes one audit record. The record is updated with the generated
// ID and timestamps.
func (r *TradeAuditRepository) Insert(
	ctx context.Context,
	record *model.TradeAudit,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeAuditRepository",
		"op":      "Insert",
		"symbol":  record.Symbol,
		"market":  record.Market,
		"outcome": record.Outcome,
	}).Debug("Inserting trade audit record")

	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeAuditRepository",
			"op":   "Insert",
		}).WithError(err).Error("Failed to insert trade audit record")

		return err
	}

	return nil
}

// TradeAuditSearchOptions filters audit queries. Zero-valued fields are
// ignored.
type TradeAuditSearchOptions struct {
	Symbol        *string
	Market        *string
	Outcome       *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// Search lists audit records newest first.
func (r *TradeAuditRepository) Search(
	ctx context.Context,
	options TradeAuditSearchOptions,
) ([]model.TradeAudit, error) {

	query := r.db.WithContext(ctx).Model(&model.TradeAudit{})

	if options.Symbol != nil {
		query = query.Where("symbol = ?", *options.Symbol)
	}
	if options.Market != nil {
		query = query.Where("market = ?", *options.Market)
	}
	if options.Outcome != nil {
		query = query.Where("outcome = ?", *options.Outcome)
	}
	if options.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *options.CreatedAfter)
	}
	if options.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *options.CreatedBefore)
	}

	query = query.Order("created_at DESC, id DESC")

	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if options.Offset > 0 {
		query = query.Offset(options.Offset)
	}

	var records []model.TradeAudit
	if err := query.Find(&records).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeAuditRepository",
			"op":   "Search",
		}).WithError(err).Error("Failed to search trade audit records")

		return nil, err
	}

	return records, nil
}

// DailyRealizedLoss sums the realized losses booked on the given UTC day and
// returns them as a positive USDT amount. Profitable days report zero.
func (r *TradeAuditRepository) DailyRealizedLoss(
	ctx context.Context,
	day time.Time,
) (float64, error) {

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var total float64
	err := r.db.WithContext(ctx).
		Model(&model.TradeAudit{}).
		Select("COALESCE(SUM(realized_pnl), 0)").
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Scan(&total).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeAuditRepository",
			"op":   "DailyRealizedLoss",
		}).WithError(err).Error("Failed to sum realized pnl")

		return 0, err
	}

	if total >= 0 {
		return 0, nil
	}
	return -total, nil
}
