package handler

import (
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"tradecore/src/model"
)

type modeAdmin interface {
	TradingMode() model.TradingMode
	TradingMarket() model.TradingMarket
	SetTradingMode(mode model.TradingMode) error
	SetTradingMarket(market model.TradingMarket) error
}

type modeResponse struct {
	Mode   model.TradingMode   `json:"mode"`
	Market model.TradingMarket `json:"market"`
}

// GetTradingModeHandler reports the current mode and default market.
func GetTradingModeHandler(store modeAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(modeResponse{
			Mode:   store.TradingMode(),
			Market: store.TradingMarket(),
		}); err != nil {
			logger.WithError(err).Error("failed to encode mode response")
		}
	}
}

type setModeRequest struct {
	Mode   *string `json:"mode,omitempty"`
	Market *string `json:"market,omitempty"`
}

// SetTradingModeHandler flips the trading mode and/or default market. The
// engine reads the store on every call, so the flip applies to the next
// signal with no restart.
func SetTradingModeHandler(store modeAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setModeRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		if payload.Mode == nil && payload.Market == nil {
			http.Error(w, "nothing to update", http.StatusBadRequest)
			return
		}

		if payload.Mode != nil {
			if err := store.SetTradingMode(model.TradingMode(*payload.Mode)); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		if payload.Market != nil {
			if err := store.SetTradingMarket(model.TradingMarket(*payload.Market)); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(modeResponse{
			Mode:   store.TradingMode(),
			Market: store.TradingMarket(),
		}); err != nil {
			logger.WithError(err).Error("failed to encode mode response")
		}
	}
}
