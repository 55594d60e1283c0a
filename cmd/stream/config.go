package stream

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Symbols []string `envconfig:"STREAM_SYMBOLS" default:"BTCUSDT"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
