package ohlcvcrypto

import (
	"context"
	"net/http"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tradecore/src/database"
	"tradecore/src/model"
	"tradecore/src/repository"
)

const (
	Duration1m = "1m"
	Duration1h = "1h"
)

// OHLCVCrypto backfills candles from the exchange REST API so the engine has
// reference prices before the live stream catches up.
type OHLCVCrypto struct {
	Log      *logger.Entry
	Repo     *repository.OHLCVRepository
	Config   *Config
	exchange goex.API
}

func (o *OHLCVCrypto) Start() error {
	o.Config = GetConfig()

	if o.Log == nil {
		o.Log = logger.WithField("component", "OHLCVCrypto")
	}

	if o.Repo == nil {
		if err := database.InitMainDB(); err != nil {
			o.Log.WithError(err).Fatal("Failed to connect to main database")
			return err
		}
		o.Repo = repository.NewOHLCVRepository()
	}

	if o.exchange == nil {
		o.exchange = o.newBinanceInstance()
	}

	if o.Config.AutoMode {
		if err := o.determineStartPoint(); err != nil {
			return err
		}
	}

	return o.aggregateAndSave()
}

func (*OHLCVCrypto) newBinanceInstance() *binance.Binance {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return binance.NewWithConfig(apiConfig)
}

// pairSymbol is the stored symbol form, e.g. "BTCUSDT". It must match the
// symbol carried by trade signals so LatestClose lookups line up.
func (o *OHLCVCrypto) pairSymbol() string {
	return o.Config.Symbol + o.Config.Quote
}

func (o *OHLCVCrypto) aggregateAndSave() error {
	series, err := o.fetchOHLCVSeries()
	if err != nil {
		return err
	}

	ctx := context.Background()

	for i := range series {
		result := series[i]

		base := &model.OHLCVBase{
			Datetime: time.Unix(result.Timestamp, 0).UTC(),
			Open:     decimal.NewFromFloat(result.Open),
			High:     decimal.NewFromFloat(result.High),
			Low:      decimal.NewFromFloat(result.Low),
			Close:    decimal.NewFromFloat(result.Close),
			Volume:   decimal.NewFromFloat(result.Vol),
			Symbol:   o.pairSymbol(),
		}

		switch o.Config.DurationStr {
		case Duration1m:
			err = o.Repo.UpsertCandle1m(ctx, base.ConvertToOHLCV1m())
		case Duration1h:
			err = o.Repo.UpsertCandle1h(ctx, base.ConvertToOHLCV1h())
		default:
			panic("invalid DURATION env var")
		}
		if err != nil {
			o.Log.WithError(err).Error("aggregateAndSave, upsert, ")
			return err
		}

		o.Log.WithFields(logger.Fields{
			"Symbol":   base.Symbol,
			"Datetime": base.Datetime,
			"Close":    base.Close,
		}).Info("OHLCV data inserted or updated in database")
	}

	return nil
}

func (o *OHLCVCrypto) determineStartPoint() error {
	o.Config.StartDt = o.Config.StartDt.Add(-o.parseDuration())
	o.Config.EndDt = time.Now()

	latest, err := o.Repo.LatestDatetime(context.Background(), o.pairSymbol())
	if err != nil {
		o.Log.WithError(err).Error("Failed to query latest datetime")
		return err
	}

	if latest != nil {
		// Resume one interval before the last recorded candle so the newest
		// (possibly partial) bucket gets refreshed.
		o.Config.StartDt = latest.Datetime.Add(-o.parseDuration())
		o.Log.
			WithField("StartDt", o.Config.StartDt.String()).
			WithField("EndDt", o.Config.EndDt.String()).
			Info("determineStartPoint valid date found")
	} else {
		o.Log.
			WithField("StartDt", o.Config.StartDt.String()).
			WithField("EndDt", o.Config.EndDt.String()).
			Info("determineStartPoint no records found, start from the configured StartDt")
	}

	return nil
}

func (o *OHLCVCrypto) fetchOHLCVSeries() ([]goex.Kline, error) {
	targetSymbol := goex.NewCurrencyPair(goex.Currency{Symbol: o.Config.Symbol}, goex.Currency{Symbol: o.Config.Quote})

	const millis = 1000
	klines, err := o.exchange.GetKlineRecords(
		targetSymbol,
		o.parseDurationToGoex(),
		o.Config.Limit,
		goex.OptionalParameter{}.
			Optional("startTime", o.Config.StartDt.Unix()*millis).
			Optional("endTime", o.Config.EndDt.Unix()*millis),
	)
	if err != nil {
		return nil, err
	}

	return klines, nil
}

func (o *OHLCVCrypto) parseDuration() time.Duration {
	var duration time.Duration
	switch o.Config.DurationStr {
	case Duration1m:
		duration = time.Minute
	case Duration1h:
		duration = time.Hour
	default:
		panic("invalid DURATION env var")
	}
	return duration
}

func (o *OHLCVCrypto) parseDurationToGoex() goex.KlinePeriod {
	var duration goex.KlinePeriod
	switch o.Config.DurationStr {
	case Duration1m:
		duration = goex.KLINE_PERIOD_1MIN
	case Duration1h:
		duration = goex.KLINE_PERIOD_1H
	default:
		panic("invalid DURATION env var")
	}
	return duration
}
