package executor

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"tradecore/src/config"
	"tradecore/src/connectors"
	"tradecore/src/database"
	"tradecore/src/engine"
	"tradecore/src/executors"
	"tradecore/src/repository"
	"tradecore/src/risk"
)

type Executor struct{}

func (t *Executor) Start() error {
	cmdConfig := GetConfig()
	if level, err := logrus.ParseLevel(cmdConfig.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

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

	auditRepo := repository.NewTradeAuditRepository()
	signalRepo := repository.NewSignalRepository()
	ohlcvRepo := repository.NewOHLCVRepository()

	connConfig := connectors.GetConfig()
	exchange := connectors.NewBinanceFuturesClient(
		connConfig.BinanceAPIKey,
		connConfig.BinanceAPISecret,
		connConfig.BinanceBaseURL,
	)

	riskEnv := risk.GetEnvConfig()
	guard := risk.NewGuard(risk.ConfigsFromEnv(), exchange, auditRepo, riskEnv.CheckTimeout)

	modes := config.NewModeStoreFromEnv()

	eng := engine.New(
		logrus.WithField("component", "TradeEngine"),
		engine.GetConfig(),
		modes,
		guard,
		exchange,
		ohlcvRepo,
		auditRepo,
	)

	logrus.WithFields(logrus.Fields{
		"mode":   modes.TradingMode(),
		"market": modes.TradingMarket(),
	}).Info("Starting signal executor")

	if err := executors.StartLoop(ctx, signalRepo, eng); err != nil {
		logrus.WithError(err).Error("Failed to start executor loop")
		return err
	}

	return nil
}
