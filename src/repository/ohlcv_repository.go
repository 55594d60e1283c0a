package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradecore/src/database"
	"tradecore/src/model"
)

// ErrNoMarketData is returned when no candle exists for a symbol. Callers
// must treat it as "cannot evaluate", never as a zero price.
var ErrNoMarketData = errors.New("no market data for symbol")

// OHLCVRepository stores candles and serves the latest reference price.
type OHLCVRepository struct {
	db *gorm.DB
}

func NewOHLCVRepository() *OHLCVRepository {
	logger.WithField("component", "OHLCVRepository").
		Info("Creating new OHLCVRepository with MainDB")

	return &OHLCVRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *OHLCVRepository) WithDB(db *gorm.DB) *OHLCVRepository {
	return &OHLCVRepository{db: db}
}

// LatestClose returns the close of the most recent 1m candle for the symbol.
func (r *OHLCVRepository) LatestClose(
	ctx context.Context,
	symbol string,
) (float64, error) {

	var candle model.OHLCV1m
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("datetime DESC").
		First(&candle).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoMarketData
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "OHLCVRepository",
			"op":     "LatestClose",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch latest candle")

		return 0, err
	}

	return candle.Close.InexactFloat64(), nil
}

// UpsertCandle1m inserts or refreshes one 1m candle keyed on (symbol,
// datetime).
func (r *OHLCVRepository) UpsertCandle1m(
	ctx context.Context,
	candle *model.OHLCV1m,
) error {

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "datetime"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(candle).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "OHLCVRepository",
			"op":     "UpsertCandle1m",
			"symbol": candle.Symbol,
		}).WithError(err).Error("Failed to upsert candle")

		return err
	}

	return nil
}

// UpsertCandle1h inserts or refreshes one 1h candle keyed on (symbol,
// datetime).
func (r *OHLCVRepository) UpsertCandle1h(
	ctx context.Context,
	candle *model.OHLCV1h,
) error {

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "datetime"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(candle).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "OHLCVRepository",
			"op":     "UpsertCandle1h",
			"symbol": candle.Symbol,
		}).WithError(err).Error("Failed to upsert candle")

		return err
	}

	return nil
}

// LatestDatetime returns the newest stored 1m candle time for a symbol, used
// by the backfill command to resume where it stopped.
func (r *OHLCVRepository) LatestDatetime(
	ctx context.Context,
	symbol string,
) (*model.OHLCV1m, error) {

	var candle model.OHLCV1m
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("datetime DESC").
		First(&candle).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &candle, nil
}
