package config

import (
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"

	"tradecore/src/model"
)

// ModeStore is the in-process mode source. It is seeded from the environment
// and can be flipped at runtime through the admin API; reads and writes are
// safe for concurrent use.
type ModeStore struct {
	mu     sync.RWMutex
	mode   model.TradingMode
	market model.TradingMarket
}

// NewModeStoreFromEnv seeds a store from TRADING_MODE / TRADING_MARKET.
// Invalid values fall back to the safe side: OFF and FUTURES.
func NewModeStoreFromEnv() *ModeStore {
	cfg := GetConfig()

	mode := model.TradingMode(cfg.TradingMode)
	if !mode.Valid() {
		logger.WithField("trading_mode", cfg.TradingMode).
			Warn("Invalid TRADING_MODE, falling back to OFF")
		mode = model.ModeOff
	}

	market := model.TradingMarket(cfg.TradingMarket)
	if !market.Valid() {
		logger.WithField("trading_market", cfg.TradingMarket).
			Warn("Invalid TRADING_MARKET, falling back to FUTURES")
		market = model.MarketFutures
	}

	return &ModeStore{mode: mode, market: market}
}

func (s *ModeStore) TradingMode() model.TradingMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *ModeStore) TradingMarket() model.TradingMarket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market
}

func (s *ModeStore) SetTradingMode(mode model.TradingMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid trading mode %q", mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.WithFields(logger.Fields{
		"from": s.mode,
		"to":   mode,
	}).Info("Trading mode changed")
	s.mode = mode

	return nil
}

func (s *ModeStore) SetTradingMarket(market model.TradingMarket) error {
	if !market.Valid() {
		return fmt.Errorf("invalid trading market %q", market)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.WithFields(logger.Fields{
		"from": s.market,
		"to":   market,
	}).Info("Default trading market changed")
	s.market = market

	return nil
}
