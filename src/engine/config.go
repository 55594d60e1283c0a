package engine

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// DefaultOrderQty sizes executions when the caller supplies no notional
	// override (e.g. 0.001 BTC).
	DefaultOrderQty float64       `envconfig:"DEFAULT_ORDER_QTY" default:"0.001"`
	PriceTimeout    time.Duration `envconfig:"PRICE_LOOKUP_TIMEOUT" default:"5s"`
	ExchangeTimeout time.Duration `envconfig:"EXCHANGE_CALL_TIMEOUT" default:"20s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
