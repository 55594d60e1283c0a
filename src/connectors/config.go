package connectors

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BinanceAPIKey    string `envconfig:"BINANCE_API_KEY"`
	BinanceAPISecret string `envconfig:"BINANCE_API_SECRET"`
	BinanceBaseURL   string `envconfig:"BINANCE_BASE_URL" default:"https://testnet.binancefuture.com"`
	BinanceWSBaseURL string `envconfig:"BINANCE_WS_BASE_URL" default:"wss://stream.binancefuture.com"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
