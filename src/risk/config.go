package risk

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"tradecore/src/model"
)

// Config holds the limits for one market. SPOT and FUTURES each get their
// own value; the guard never applies one market's config to the other.
type Config struct {
	MaxPositionSizeUSDT     decimal.Decimal `json:"max_position_size_usdt"`
	MaxLeverage             decimal.Decimal `json:"max_leverage"`
	MaxOpenPositions        int             `json:"max_open_positions"`
	MinAvailableBalanceUSDT decimal.Decimal `json:"min_available_balance_usdt"`
	MaxDailyLossUSDT        decimal.Decimal `json:"max_daily_loss_usdt"`
}

type EnvConfig struct {
	FuturesMaxPositionUSDT  float64 `envconfig:"RISK_FUTURES_MAX_POSITION_USDT" default:"300"`
	FuturesMaxLeverage      float64 `envconfig:"RISK_FUTURES_MAX_LEVERAGE" default:"3"`
	FuturesMaxOpenPositions int     `envconfig:"RISK_FUTURES_MAX_OPEN_POSITIONS" default:"3"`
	FuturesMinBalanceUSDT   float64 `envconfig:"RISK_FUTURES_MIN_BALANCE_USDT" default:"50"`
	FuturesMaxDailyLossUSDT float64 `envconfig:"RISK_FUTURES_MAX_DAILY_LOSS_USDT" default:"100"`

	SpotMaxPositionUSDT  float64 `envconfig:"RISK_SPOT_MAX_POSITION_USDT" default:"500"`
	SpotMaxDailyLossUSDT float64 `envconfig:"RISK_SPOT_MAX_DAILY_LOSS_USDT" default:"100"`

	CheckTimeout time.Duration `envconfig:"RISK_CHECK_TIMEOUT" default:"5s"`
}

func GetEnvConfig() EnvConfig {
	var config EnvConfig
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// ConfigsFromEnv builds the per-market limit map from the environment.
func ConfigsFromEnv() map[model.TradingMarket]Config {
	env := GetEnvConfig()

	return map[model.TradingMarket]Config{
		model.MarketFutures: {
			MaxPositionSizeUSDT:     decimal.NewFromFloat(env.FuturesMaxPositionUSDT),
			MaxLeverage:             decimal.NewFromFloat(env.FuturesMaxLeverage),
			MaxOpenPositions:        env.FuturesMaxOpenPositions,
			MinAvailableBalanceUSDT: decimal.NewFromFloat(env.FuturesMinBalanceUSDT),
			MaxDailyLossUSDT:        decimal.NewFromFloat(env.FuturesMaxDailyLossUSDT),
		},
		model.MarketSpot: {
			MaxPositionSizeUSDT: decimal.NewFromFloat(env.SpotMaxPositionUSDT),
			MaxLeverage:         decimal.NewFromFloat(1),
			MaxDailyLossUSDT:    decimal.NewFromFloat(env.SpotMaxDailyLossUSDT),
		},
	}
}
