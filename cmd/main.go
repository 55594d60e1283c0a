package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tradecore/cmd/executor"
	"tradecore/cmd/ohlcvcrypto"
	"tradecore/cmd/stream"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Tradecore CMD"
	app.Usage = "The Tradecore command line interface"

	app.Commands = []cli.Command{
		executorCMD,
		ohlcvCryptoCMD,
		streamCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	executorCMD = cli.Command{
		Name:        "executor",
		Usage:       "run the signal executor loop",
		Action:      executorAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Poll queued trading signals and route them through the trade engine`,
	}
	ohlcvCryptoCMD = cli.Command{
		Name:        "ohlcv",
		Usage:       "backfill OHLCV candles",
		Action:      ohlcvCryptoAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Backfill candles from the exchange REST API into the candle store`,
	}
	streamCMD = cli.Command{
		Name:        "stream",
		Usage:       "run the live kline stream",
		Action:      streamAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Stream live klines over websocket into the candle store`,
	}
)

func executorAction(_ *cli.Context) error {
	logrus.Info("Starting executor CMD")

	e := &executor.Executor{}
	if err := e.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func ohlcvCryptoAction(_ *cli.Context) error {
	logrus.Info("Starting OHLCV backfill CMD")

	o := &ohlcvcrypto.OHLCVCrypto{}
	if err := o.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func streamAction(_ *cli.Context) error {
	logrus.Info("Starting kline stream CMD")

	s := &stream.Stream{}
	if err := s.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
