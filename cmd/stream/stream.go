package stream

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"tradecore/src/connectors"
	"tradecore/src/database"
	"tradecore/src/repository"
)

type Stream struct{}

func (s *Stream) Start() error {
	config := GetConfig()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	ohlcvRepo := repository.NewOHLCVRepository()

	connConfig := connectors.GetConfig()
	klines := connectors.NewKlineStream(connConfig.BinanceWSBaseURL, config.Symbols, ohlcvRepo)

	logrus.WithField("symbols", config.Symbols).Info("Starting kline stream")

	if err := klines.Run(ctx); err != nil {
		logrus.WithError(err).Error("Kline stream terminated")
		return err
	}

	return nil
}
