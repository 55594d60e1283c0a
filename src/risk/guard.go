package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tradecore/src/connectors"
	"tradecore/src/model"
)

// Verdict is produced fresh per check; the guard holds no per-call state.
// Reason is part of the observable contract: callers match on substrings like
// "exceeds maximum position size", so the vocabulary must stay stable.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Verdict {
	return Verdict{Allowed: true}
}

func deny(reason string) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}

// AccountSource reports live exposure. The exchange client satisfies it.
type AccountSource interface {
	GetOpenPositions(ctx context.Context) ([]connectors.PositionResult, error)
	GetAccountInfo(ctx context.Context) (*connectors.AccountInfo, error)
}

// LossLedger reports cumulative realized loss for a trading day, as a
// positive number of USDT.
type LossLedger interface {
	DailyRealizedLoss(ctx context.Context, day time.Time) (float64, error)
}

// Guard evaluates proposed trades against immutable per-market limits. It
// never writes state; external reads are bounded by a timeout and fail
// closed, because an inability to verify risk is never permission.
type Guard struct {
	configs map[model.TradingMarket]Config
	account AccountSource
	ledger  LossLedger
	timeout time.Duration
	now     func() time.Time
	log     *logger.Entry
}

// NewGuard wires a guard. account and ledger are optional; when nil the
// corresponding circuit breakers are skipped.
func NewGuard(configs map[model.TradingMarket]Config, account AccountSource, ledger LossLedger, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	copied := make(map[model.TradingMarket]Config, len(configs))
	for market, cfg := range configs {
		copied[market] = cfg
	}

	return &Guard{
		configs: copied,
		account: account,
		ledger:  ledger,
		timeout: timeout,
		now:     time.Now,
		log:     logger.WithField("component", "RiskGuard"),
	}
}

// GetConfig returns a fresh copy of the per-market limit map so callers can
// inspect effective limits without being able to mutate them.
func (g *Guard) GetConfig() map[model.TradingMarket]Config {
	out := make(map[model.TradingMarket]Config, len(g.configs))
	for market, cfg := range g.configs {
		out[market] = cfg
	}
	return out
}

// CheckTradeRisk evaluates one proposed trade. The config for the given
// market and only that market is applied; cross-applying SPOT limits to
// FUTURES (or vice versa) would silently weaken enforcement.
func (g *Guard) CheckTradeRisk(ctx context.Context, signal *model.TradeSignal, notionalUSDT float64, market model.TradingMarket) Verdict {
	if signal == nil || signal.Symbol == "" {
		return deny("missing symbol on trade signal")
	}
	if notionalUSDT < 0 {
		return deny(fmt.Sprintf("negative notional %.2f USDT", notionalUSDT))
	}
	if !market.Valid() {
		return deny(fmt.Sprintf("unknown market %q", market))
	}

	cfg, ok := g.configs[market]
	if !ok {
		// No config means no verification, which means no trade.
		return deny(fmt.Sprintf("no risk configuration for market %s", market))
	}

	notional := decimal.NewFromFloat(notionalUSDT)

	if notional.GreaterThan(cfg.MaxPositionSizeUSDT) {
		return deny(fmt.Sprintf(
			"notional %s USDT exceeds maximum position size %s USDT for %s",
			notional.String(), cfg.MaxPositionSizeUSDT.String(), market,
		))
	}

	if market == model.MarketFutures {
		if verdict := g.checkFuturesExposure(ctx, notional, cfg); !verdict.Allowed {
			return verdict
		}
	}

	if verdict := g.checkDailyLoss(ctx, cfg, market); !verdict.Allowed {
		return verdict
	}

	return allow()
}

func (g *Guard) checkFuturesExposure(ctx context.Context, notional decimal.Decimal, cfg Config) Verdict {
	if g.account == nil {
		return allow()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	positions, err := g.account.GetOpenPositions(ctx)
	if err != nil {
		g.log.WithError(err).Error("open positions lookup failed, failing closed")
		return deny(fmt.Sprintf("risk verification unavailable: %v", err))
	}

	if cfg.MaxOpenPositions > 0 && len(positions) >= cfg.MaxOpenPositions {
		return deny(fmt.Sprintf(
			"open positions %d at or above maximum %d",
			len(positions), cfg.MaxOpenPositions,
		))
	}

	account, err := g.account.GetAccountInfo(ctx)
	if err != nil {
		g.log.WithError(err).Error("account info lookup failed, failing closed")
		return deny(fmt.Sprintf("risk verification unavailable: %v", err))
	}

	available := decimal.NewFromFloat(account.AvailableBalance)

	if available.LessThan(cfg.MinAvailableBalanceUSDT) {
		return deny(fmt.Sprintf(
			"available balance %s USDT below minimum %s USDT",
			available.String(), cfg.MinAvailableBalanceUSDT.String(),
		))
	}

	if cfg.MaxLeverage.IsPositive() && available.IsPositive() {
		implied := notional.Div(available)
		if implied.GreaterThan(cfg.MaxLeverage) {
			return deny(fmt.Sprintf(
				"implied leverage %s exceeds maximum leverage %s for FUTURES",
				implied.Round(2).String(), cfg.MaxLeverage.String(),
			))
		}
	}

	if cfg.MaxDailyLossUSDT.IsPositive() {
		unrealized := decimal.NewFromFloat(account.UnrealisedPNL)
		if unrealized.IsNegative() && unrealized.Neg().GreaterThan(cfg.MaxDailyLossUSDT) {
			return deny(fmt.Sprintf(
				"unrealized loss %s USDT exceeds daily loss limit %s USDT",
				unrealized.Neg().String(), cfg.MaxDailyLossUSDT.String(),
			))
		}
	}

	return allow()
}

func (g *Guard) checkDailyLoss(ctx context.Context, cfg Config, market model.TradingMarket) Verdict {
	if g.ledger == nil || !cfg.MaxDailyLossUSDT.IsPositive() {
		return allow()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	loss, err := g.ledger.DailyRealizedLoss(ctx, g.now().UTC())
	if err != nil {
		g.log.WithError(err).Error("loss ledger lookup failed, failing closed")
		return deny(fmt.Sprintf("risk verification unavailable: %v", err))
	}

	realized := decimal.NewFromFloat(loss)
	if realized.GreaterThan(cfg.MaxDailyLossUSDT) {
		return deny(fmt.Sprintf(
			"realized loss %s USDT exceeds daily loss limit %s USDT for %s",
			realized.String(), cfg.MaxDailyLossUSDT.String(), market,
		))
	}

	return allow()
}
