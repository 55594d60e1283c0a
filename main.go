package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradecore/src/config"
	"tradecore/src/connectors"
	"tradecore/src/database"
	"tradecore/src/engine"
	"tradecore/src/repository"
	"tradecore/src/risk"
	"tradecore/src/server"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	auditRepo := repository.NewTradeAuditRepository()
	ohlcvRepo := repository.NewOHLCVRepository()
	signalRepo := repository.NewSignalRepository()

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
		logger.WithField("component", "TradeEngine"),
		engine.GetConfig(),
		modes,
		guard,
		exchange,
		ohlcvRepo,
		auditRepo,
	)

	server.StartServer(server.GetConfig().Port, server.Deps{
		Engine:     eng,
		ModeStore:  modes,
		AuditRepo:  auditRepo,
		SignalRepo: signalRepo,
	})
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
