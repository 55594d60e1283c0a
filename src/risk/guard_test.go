package risk

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradecore/src/connectors"
	"tradecore/src/model"
)

type stubAccount struct {
	positions    []connectors.PositionResult
	positionsErr error
	info         connectors.AccountInfo
	infoErr      error
}

func (s *stubAccount) GetOpenPositions(_ context.Context) ([]connectors.PositionResult, error) {
	return s.positions, s.positionsErr
}

func (s *stubAccount) GetAccountInfo(_ context.Context) (*connectors.AccountInfo, error) {
	if s.infoErr != nil {
		return nil, s.infoErr
	}
	info := s.info
	return &info, nil
}

type stubLedger struct {
	loss float64
	err  error
}

func (s *stubLedger) DailyRealizedLoss(_ context.Context, _ time.Time) (float64, error) {
	return s.loss, s.err
}

func testConfigs() map[model.TradingMarket]Config {
	return map[model.TradingMarket]Config{
		model.MarketFutures: {
			MaxPositionSizeUSDT:     decimal.NewFromInt(300),
			MaxLeverage:             decimal.NewFromInt(3),
			MaxOpenPositions:        3,
			MinAvailableBalanceUSDT: decimal.NewFromInt(50),
			MaxDailyLossUSDT:        decimal.NewFromInt(100),
		},
		model.MarketSpot: {
			MaxPositionSizeUSDT: decimal.NewFromInt(500),
			MaxLeverage:         decimal.NewFromInt(1),
			MaxDailyLossUSDT:    decimal.NewFromInt(100),
		},
	}
}

func healthyAccount() *stubAccount {
	return &stubAccount{
		info: connectors.AccountInfo{
			AvailableBalance: 1000,
			AccountEquity:    1200,
			UnrealisedPNL:    0,
			MarginBalance:    1100,
		},
	}
}

func buySignal(symbol string) *model.TradeSignal {
	return &model.TradeSignal{
		Source:    model.SourceStrategyPipeline,
		Symbol:    symbol,
		Action:    model.ActionBuy,
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestCheckTradeRiskPositionSize(t *testing.T) {
	tests := []struct {
		name         string
		market       model.TradingMarket
		notional     float64
		wantAllowed  bool
		wantInReason string
	}{
		{name: "futures within limit", market: model.MarketFutures, notional: 300, wantAllowed: true},
		{name: "futures above limit", market: model.MarketFutures, notional: 300.01, wantAllowed: false, wantInReason: "exceeds maximum position size"},
		{name: "spot within limit", market: model.MarketSpot, notional: 500, wantAllowed: true},
		{name: "spot above limit", market: model.MarketSpot, notional: 500.01, wantAllowed: false, wantInReason: "exceeds maximum position size"},
		// 400 USDT is legal on SPOT but over the FUTURES cap; the guard must
		// never borrow the other market's limits.
		{name: "futures does not inherit spot limit", market: model.MarketFutures, notional: 400, wantAllowed: false, wantInReason: "exceeds maximum position size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			guard := NewGuard(testConfigs(), healthyAccount(), &stubLedger{}, time.Second)

			verdict := guard.CheckTradeRisk(context.Background(), buySignal("BTCUSDT"), tc.notional, tc.market)

			if verdict.Allowed != tc.wantAllowed {
				t.Fatalf("expected allowed=%v, got %+v", tc.wantAllowed, verdict)
			}
			if tc.wantInReason != "" && !strings.Contains(verdict.Reason, tc.wantInReason) {
				t.Fatalf("expected reason containing %q, got %q", tc.wantInReason, verdict.Reason)
			}
		})
	}
}

func TestCheckTradeRiskInputValidation(t *testing.T) {
	guard := NewGuard(testConfigs(), healthyAccount(), &stubLedger{}, time.Second)
	ctx := context.Background()

	if verdict := guard.CheckTradeRisk(ctx, nil, 100, model.MarketFutures); verdict.Allowed {
		t.Fatalf("expected nil signal to be denied, got %+v", verdict)
	}

	if verdict := guard.CheckTradeRisk(ctx, buySignal(""), 100, model.MarketFutures); verdict.Allowed {
		t.Fatalf("expected empty symbol to be denied, got %+v", verdict)
	}

	if verdict := guard.CheckTradeRisk(ctx, buySignal("BTCUSDT"), -1, model.MarketFutures); verdict.Allowed {
		t.Fatalf("expected negative notional to be denied, got %+v", verdict)
	}

	verdict := guard.CheckTradeRisk(ctx, buySignal("BTCUSDT"), 100, model.TradingMarket("MARGIN"))
	if verdict.Allowed || !strings.Contains(verdict.Reason, "unknown market") {
		t.Fatalf("expected unknown market to be denied, got %+v", verdict)
	}
}

func TestCheckTradeRiskMissingMarketConfig(t *testing.T) {
	configs := testConfigs()
	delete(configs, model.MarketSpot)

	guard := NewGuard(configs, healthyAccount(), &stubLedger{}, time.Second)

	verdict := guard.CheckTradeRisk(context.Background(), buySignal("BTCUSDT"), 100, model.MarketSpot)
	if verdict.Allowed || !strings.Contains(verdict.Reason, "no risk configuration") {
		t.Fatalf("expected missing config to be denied, got %+v", verdict)
	}
}

func TestCheckTradeRiskFuturesExposure(t *testing.T) {
	tests := []struct {
		name         string
		account      *stubAccount
		notional     float64
		wantAllowed  bool
		wantInReason string
	}{
		{
			name:        "healthy account allows",
			account:     healthyAccount(),
			notional:    100,
			wantAllowed: true,
		},
		{
			name: "open positions at ceiling",
			account: &stubAccount{
				positions: []connectors.PositionResult{
					{Symbol: "BTCUSDT", Side: "LONG", Size: 0.01},
					{Symbol: "ETHUSDT", Side: "LONG", Size: 0.1},
					{Symbol: "SOLUSDT", Side: "SHORT", Size: 1},
				},
				info: connectors.AccountInfo{AvailableBalance: 1000},
			},
			notional:     100,
			wantAllowed:  false,
			wantInReason: "open positions 3 at or above maximum 3",
		},
		{
			name: "balance below minimum",
			account: &stubAccount{
				info: connectors.AccountInfo{AvailableBalance: 49.99},
			},
			notional:     10,
			wantAllowed:  false,
			wantInReason: "below minimum",
		},
		{
			name: "implied leverage above maximum",
			account: &stubAccount{
				info: connectors.AccountInfo{AvailableBalance: 60},
			},
			notional:     200,
			wantAllowed:  false,
			wantInReason: "exceeds maximum leverage",
		},
		{
			name: "unrealized loss beyond daily limit",
			account: &stubAccount{
				info: connectors.AccountInfo{AvailableBalance: 1000, UnrealisedPNL: -150},
			},
			notional:     100,
			wantAllowed:  false,
			wantInReason: "exceeds daily loss limit",
		},
		{
			name:         "positions lookup failure fails closed",
			account:      &stubAccount{positionsErr: errors.New("connection reset")},
			notional:     100,
			wantAllowed:  false,
			wantInReason: "risk verification unavailable",
		},
		{
			name: "account lookup failure fails closed",
			account: &stubAccount{
				infoErr: errors.New("context deadline exceeded"),
			},
			notional:     100,
			wantAllowed:  false,
			wantInReason: "risk verification unavailable",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			guard := NewGuard(testConfigs(), tc.account, &stubLedger{}, time.Second)

			verdict := guard.CheckTradeRisk(context.Background(), buySignal("BTCUSDT"), tc.notional, model.MarketFutures)

			if verdict.Allowed != tc.wantAllowed {
				t.Fatalf("expected allowed=%v, got %+v", tc.wantAllowed, verdict)
			}
			if tc.wantInReason != "" && !strings.Contains(verdict.Reason, tc.wantInReason) {
				t.Fatalf("expected reason containing %q, got %q", tc.wantInReason, verdict.Reason)
			}
		})
	}
}

func TestCheckTradeRiskDailyLossLedger(t *testing.T) {
	tests := []struct {
		name         string
		ledger       *stubLedger
		wantAllowed  bool
		wantInReason string
	}{
		{name: "under the limit", ledger: &stubLedger{loss: 99}, wantAllowed: true},
		{name: "at the limit", ledger: &stubLedger{loss: 100}, wantAllowed: true},
		{name: "over the limit", ledger: &stubLedger{loss: 100.5}, wantAllowed: false, wantInReason: "exceeds daily loss limit"},
		{name: "ledger failure fails closed", ledger: &stubLedger{err: errors.New("db down")}, wantAllowed: false, wantInReason: "risk verification unavailable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			guard := NewGuard(testConfigs(), healthyAccount(), tc.ledger, time.Second)

			verdict := guard.CheckTradeRisk(context.Background(), buySignal("BTCUSDT"), 100, model.MarketFutures)

			if verdict.Allowed != tc.wantAllowed {
				t.Fatalf("expected allowed=%v, got %+v", tc.wantAllowed, verdict)
			}
			if tc.wantInReason != "" && !strings.Contains(verdict.Reason, tc.wantInReason) {
				t.Fatalf("expected reason containing %q, got %q", tc.wantInReason, verdict.Reason)
			}
		})
	}
}

func TestCheckTradeRiskSpotSkipsFuturesExposure(t *testing.T) {
	// A broken account source must not block SPOT checks; futures exposure is
	// a FUTURES-only concern.
	account := &stubAccount{positionsErr: errors.New("unreachable")}
	guard := NewGuard(testConfigs(), account, &stubLedger{}, time.Second)

	verdict := guard.CheckTradeRisk(context.Background(), buySignal("BTCUSDT"), 100, model.MarketSpot)
	if !verdict.Allowed {
		t.Fatalf("expected spot check to pass without account source, got %+v", verdict)
	}
}

func TestGetConfigReturnsCopy(t *testing.T) {
	guard := NewGuard(testConfigs(), nil, nil, time.Second)

	first := guard.GetConfig()
	first[model.MarketFutures] = Config{MaxPositionSizeUSDT: decimal.NewFromInt(1)}
	delete(first, model.MarketSpot)

	second := guard.GetConfig()
	futures, ok := second[model.MarketFutures]
	if !ok || !futures.MaxPositionSizeUSDT.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("guard config mutated through returned copy: %+v", second)
	}
	if _, ok := second[model.MarketSpot]; !ok {
		t.Fatalf("spot config lost through returned copy: %+v", second)
	}
}

func TestNilCollaboratorsSkipCircuitBreakers(t *testing.T) {
	guard := NewGuard(testConfigs(), nil, nil, 0)

	verdict := guard.CheckTradeRisk(context.Background(), buySignal("BTCUSDT"), 100, model.MarketFutures)
	if !verdict.Allowed {
		t.Fatalf("expected allow with nil account and ledger, got %+v", verdict)
	}
}
