package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"tradecore/src/model"
)

type Config struct {
	TradingMode   string `envconfig:"TRADING_MODE" default:"DRY_RUN"`
	TradingMarket string `envconfig:"TRADING_MARKET" default:"FUTURES"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// ModeSource supplies the current trading mode and default market. The engine
// reads it on every call so a live flip takes effect on the very next signal.
type ModeSource interface {
	TradingMode() model.TradingMode
	TradingMarket() model.TradingMarket
}
