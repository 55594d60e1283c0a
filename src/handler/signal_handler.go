package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradecore/src/model"
)

type signalExecutor interface {
	ExecuteSignal(ctx context.Context, signal model.TradeSignal, notionalOverride *float64) model.ExecutionResult
}

type signalEnqueuer interface {
	Enqueue(ctx context.Context, record *model.SignalRecord) error
}

// ExecuteSignalRequest is the POST /signals payload.
type ExecuteSignalRequest struct {
	Source       string   `json:"source"`
	Symbol       string   `json:"symbol"`
	Action       string   `json:"action"`
	Market       *string  `json:"market,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	NotionalUSDT *float64 `json:"notional_usdt,omitempty"`
}

// ExecuteSignalHandler returns a handler that routes one trade signal
// through the engine and reports the execution result. Expected rejections
// (mode off, risk denial, not-implemented) are 200 responses with
// executed=false; only malformed payloads are client errors.
func ExecuteSignalHandler(engine signalExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ExecuteSignalRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		if payload.Symbol == "" {
			http.Error(w, "missing symbol", http.StatusBadRequest)
			return
		}

		action := model.SignalAction(payload.Action)
		if action != model.ActionBuy && action != model.ActionSell {
			http.Error(w, "action must be BUY or SELL", http.StatusBadRequest)
			return
		}

		signal := model.TradeSignal{
			Source:     model.SignalSource(payload.Source),
			Symbol:     payload.Symbol,
			Action:     action,
			Confidence: payload.Confidence,
			Score:      payload.Score,
			Timestamp:  time.Now().UTC(),
			Price:      payload.Price,
		}

		if payload.Market != nil {
			market := model.TradingMarket(*payload.Market)
			if !market.Valid() {
				http.Error(w, "market must be SPOT or FUTURES", http.StatusBadRequest)
				return
			}
			signal.Market = &market
		}

		result := engine.ExecuteSignal(r.Context(), signal, payload.NotionalUSDT)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithError(err).Error("failed to encode execution result")
		}
	}
}

// QueueSignalHandler returns a handler that stores a signal for the polling
// executor instead of executing it inline. The response carries the queued
// record; execution happens on the executor's next tick.
func QueueSignalHandler(repo signalEnqueuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ExecuteSignalRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		if payload.Symbol == "" {
			http.Error(w, "missing symbol", http.StatusBadRequest)
			return
		}

		action := model.SignalAction(payload.Action)
		if action != model.ActionBuy && action != model.ActionSell {
			http.Error(w, "action must be BUY or SELL", http.StatusBadRequest)
			return
		}

		if payload.Market != nil && !model.TradingMarket(*payload.Market).Valid() {
			http.Error(w, "market must be SPOT or FUTURES", http.StatusBadRequest)
			return
		}

		record := &model.SignalRecord{
			Source:     payload.Source,
			Symbol:     payload.Symbol,
			Action:     payload.Action,
			Market:     payload.Market,
			Confidence: payload.Confidence,
			Score:      payload.Score,
			Price:      payload.Price,
			ReceivedAt: time.Now().UTC(),
		}

		if err := repo.Enqueue(r.Context(), record); err != nil {
			logger.WithError(err).Error("failed to enqueue trading signal")
			http.Error(w, "failed to enqueue signal", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(record); err != nil {
			logger.WithError(err).Error("failed to encode queued signal")
		}
	}
}
