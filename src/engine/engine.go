package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"tradecore/src/config"
	"tradecore/src/connectors"
	"tradecore/src/model"
	"tradecore/src/risk"
)

// RiskChecker is the gate every trade passes before any order is created.
type RiskChecker interface {
	CheckTradeRisk(ctx context.Context, signal *model.TradeSignal, notionalUSDT float64, market model.TradingMarket) risk.Verdict
}

// MarketDataStore supplies the latest close for a symbol when the signal
// carries no reference price.
type MarketDataStore interface {
	LatestClose(ctx context.Context, symbol string) (float64, error)
}

// AuditStore persists one record per execution, best-effort.
type AuditStore interface {
	Insert(ctx context.Context, record *model.TradeAudit) error
}

// Engine turns a trade signal into a simulated fill, a real order or a
// rejection. One engine value is constructed at process start with its
// collaborators and is safe for concurrent use: all per-request data flows
// through arguments and return values. Concurrent calls for the same symbol
// are not serialized here; callers that need one-in-flight-per-symbol
// semantics must layer that on themselves.
type Engine struct {
	log      *logger.Entry
	cfg      Config
	modes    config.ModeSource
	risk     RiskChecker
	exchange connectors.ExchangeClient
	data     MarketDataStore
	audit    AuditStore
	now      func() time.Time
	newID    func() string
}

func New(
	log *logger.Entry,
	cfg Config,
	modes config.ModeSource,
	riskGuard RiskChecker,
	exchange connectors.ExchangeClient,
	data MarketDataStore,
	audit AuditStore,
) *Engine {
	if log == nil {
		log = logger.NewEntry(logger.StandardLogger())
	}

	return &Engine{
		log:      log,
		cfg:      cfg,
		modes:    modes,
		risk:     riskGuard,
		exchange: exchange,
		data:     data,
		audit:    audit,
		now:      time.Now,
		newID:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// ExecuteSignal runs one signal through mode check, market and price
// resolution, the risk gate and path dispatch. Expected outcomes (mode off,
// risk denial, not-implemented) come back as results, not errors; the engine
// never creates a FILLED order for a trade it could not fully verify.
func (e *Engine) ExecuteSignal(ctx context.Context, signal model.TradeSignal, notionalOverride *float64) model.ExecutionResult {
	if ctx == nil {
		ctx = context.Background()
	}

	// The global kill-switch comes first: no risk check, no exchange call,
	// no persistence when trading is off. Mode is read fresh per call so a
	// live flip takes effect on the very next signal.
	mode := e.modes.TradingMode()
	if mode == model.ModeOff || !mode.Valid() {
		e.log.WithFields(logger.Fields{
			"symbol": signal.Symbol,
			"source": signal.Source,
		}).Info("signal blocked: trading disabled")

		return model.ExecutionResult{
			Executed: false,
			Outcome:  model.OutcomeBlockedByMode,
			Reason:   model.ReasonTradingDisabled,
		}
	}

	market := e.resolveMarket(&signal)

	price, ok := e.resolvePrice(ctx, &signal)
	if !ok {
		result := model.ExecutionResult{
			Executed: false,
			Outcome:  model.OutcomeBlockedMissingData,
			Reason:   model.ReasonNoMarketData,
			Market:   market,
		}
		e.persistAudit(ctx, &signal, mode, market, 0, &result)
		return result
	}

	notional, quantity := e.resolveNotional(notionalOverride, price)

	verdict := e.risk.CheckTradeRisk(ctx, &signal, notional, market)
	if !verdict.Allowed {
		e.log.WithFields(logger.Fields{
			"symbol": signal.Symbol,
			"market": market,
			"reason": verdict.Reason,
		}).Warn("signal blocked by risk guard")

		result := model.ExecutionResult{
			Executed: false,
			Outcome:  model.OutcomeBlockedByRisk,
			Reason:   verdict.Reason,
			Market:   market,
		}
		e.persistAudit(ctx, &signal, mode, market, notional, &result)
		return result
	}

	var result model.ExecutionResult
	if mode == model.ModeDryRun {
		result = e.simulateFill(&signal, market, quantity, price)
	} else {
		result = e.placeLiveOrder(ctx, &signal, market, quantity, price)
	}

	e.persistAudit(ctx, &signal, mode, market, notional, &result)
	return result
}

// resolveMarket prefers the market tagged on the signal; otherwise the
// configured default, read fresh per call.
func (e *Engine) resolveMarket(signal *model.TradeSignal) model.TradingMarket {
	if signal.Market != nil && signal.Market.Valid() {
		return *signal.Market
	}
	return e.modes.TradingMarket()
}

// resolvePrice returns the reference price and whether one could be
// resolved. A zero or missing price is a hard stop, not a default: trading
// on a garbage reference price would corrupt every downstream number.
func (e *Engine) resolvePrice(ctx context.Context, signal *model.TradeSignal) (float64, bool) {
	if signal.Price != nil && *signal.Price > 0 {
		return *signal.Price, true
	}

	if e.data == nil {
		return 0, false
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.PriceTimeout)
	defer cancel()

	price, err := e.data.LatestClose(ctx, signal.Symbol)
	if err != nil || price <= 0 {
		e.log.WithError(err).WithField("symbol", signal.Symbol).
			Warn("no reference price available")
		return 0, false
	}

	return price, true
}

func (e *Engine) resolveNotional(override *float64, price float64) (notional, quantity float64) {
	if override != nil {
		notional = *override
		if price > 0 {
			quantity = notional / price
		}
		return notional, quantity
	}

	quantity = e.cfg.DefaultOrderQty
	notional = quantity * price
	return notional, quantity
}

// simulateFill synthesizes a filled order without touching the exchange. The
// id prefix marks it unambiguously as simulated.
func (e *Engine) simulateFill(signal *model.TradeSignal, market model.TradingMarket, quantity, price float64) model.ExecutionResult {
	prefix := model.DryRunFuturesPrefix
	if market == model.MarketSpot {
		prefix = model.DryRunSpotPrefix
	}

	order := &model.Order{
		OrderID:   prefix + e.newID(),
		Symbol:    signal.Symbol,
		Side:      signal.Action,
		Quantity:  quantity,
		Price:     price,
		Status:    model.OrderStatusFilled,
		Timestamp: e.now().UTC(),
	}

	e.log.WithFields(logger.Fields{
		"order_id": order.OrderID,
		"symbol":   order.Symbol,
		"market":   market,
	}).Info("dry-run order simulated")

	return model.ExecutionResult{
		Executed: true,
		Outcome:  model.OutcomeSimulatedFill,
		Market:   market,
		Order:    order,
	}
}

func (e *Engine) placeLiveOrder(ctx context.Context, signal *model.TradeSignal, market model.TradingMarket, quantity, price float64) model.ExecutionResult {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExchangeTimeout)
	defer cancel()

	request := connectors.PlaceOrderRequest{
		Symbol:   signal.Symbol,
		Side:     signal.Action,
		Quantity: quantity,
		Price:    &price,
		Market:   market,
	}

	if market == model.MarketSpot {
		// The call path is attempted so monitoring can observe it, but SPOT
		// execution is not wired end-to-end and terminates here with a
		// stable, matchable rejection.
		if _, err := e.exchange.PlaceOrder(ctx, request); err != nil {
			e.log.WithError(err).WithField("symbol", signal.Symbol).
				Info("spot order attempt refused")
		}

		return model.ExecutionResult{
			Executed: false,
			Outcome:  model.OutcomeNotImplemented,
			Reason:   model.ReasonSpotNotImplemented,
			Market:   market,
			Order: &model.Order{
				Symbol:    signal.Symbol,
				Side:      signal.Action,
				Quantity:  quantity,
				Price:     price,
				Status:    model.OrderStatusRejected,
				Timestamp: e.now().UTC(),
				Error:     model.ReasonSpotNotImplemented,
			},
		}
	}

	placed, err := e.exchange.PlaceOrder(ctx, request)
	if err != nil {
		// The exchange's own message is surfaced verbatim; a timeout is a
		// rejection, never an assumed success. Retry policy belongs to the
		// caller.
		e.log.WithError(err).WithFields(logger.Fields{
			"symbol": signal.Symbol,
			"market": market,
		}).Error("exchange order failed")

		return model.ExecutionResult{
			Executed: false,
			Outcome:  model.OutcomeLiveRejection,
			Reason:   err.Error(),
			Market:   market,
			Order: &model.Order{
				Symbol:    signal.Symbol,
				Side:      signal.Action,
				Quantity:  quantity,
				Price:     price,
				Status:    model.OrderStatusRejected,
				Timestamp: e.now().UTC(),
				Error:     err.Error(),
			},
		}
	}

	order := &model.Order{
		OrderID:   placed.OrderID,
		Symbol:    placed.Symbol,
		Side:      placed.Side,
		Quantity:  placed.Quantity,
		Price:     placed.Price,
		Status:    placed.Status,
		Timestamp: placed.Timestamp,
	}

	if placed.Status != model.OrderStatusFilled {
		// Anything the exchange did not confirm as a fill (REJECTED, EXPIRED,
		// a resting NEW order) is a rejection. An order that is not
		// verifiably filled is never reported as executed.
		reason := fmt.Sprintf("order %s rejected by exchange: status %s", placed.OrderID, placed.Status)
		order.Status = model.OrderStatusRejected
		order.Error = reason
		return model.ExecutionResult{
			Executed: false,
			Outcome:  model.OutcomeLiveRejection,
			Reason:   reason,
			Market:   market,
			Order:    order,
		}
	}

	e.log.WithFields(logger.Fields{
		"order_id": order.OrderID,
		"symbol":   order.Symbol,
		"market":   market,
	}).Info("exchange order placed")

	return model.ExecutionResult{
		Executed: true,
		Outcome:  model.OutcomeLiveFill,
		Market:   market,
		Order:    order,
	}
}

// persistAudit records the run. Failures are logged and never override the
// already-computed result; audit is best-effort, not transactional.
func (e *Engine) persistAudit(ctx context.Context, signal *model.TradeSignal, mode model.TradingMode, market model.TradingMarket, notional float64, result *model.ExecutionResult) {
	if e.audit == nil {
		return
	}

	record := &model.TradeAudit{
		Source:       string(signal.Source),
		Symbol:       signal.Symbol,
		Side:         string(signal.Action),
		Market:       string(market),
		Mode:         string(mode),
		Confidence:   signal.Confidence,
		Score:        signal.Score,
		SignalAt:     signal.Timestamp,
		NotionalUSDT: notional,
		Outcome:      string(result.Outcome),
		Reason:       result.Reason,
	}

	if result.Order != nil {
		record.OrderID = result.Order.OrderID
		record.OrderStatus = result.Order.Status
		record.Quantity = result.Order.Quantity
		record.Price = result.Order.Price
		if result.Order.Error != "" {
			errMsg := result.Order.Error
			record.ErrorMessage = &errMsg
		}
	}

	if err := e.audit.Insert(ctx, record); err != nil {
		e.log.WithError(err).WithField("symbol", signal.Symbol).
			Error("failed to persist trade audit")
	}
}
