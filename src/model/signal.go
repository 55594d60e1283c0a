package model

import "time"

// TradingMode is the process-wide trading switch. It is supplied by the
// configuration source and read fresh on every execution, never cached.
type TradingMode string

const (
	ModeOff     TradingMode = "OFF"
	ModeDryRun  TradingMode = "DRY_RUN"
	ModeTestnet TradingMode = "TESTNET"
	ModeLive    TradingMode = "LIVE"
)

func (m TradingMode) Valid() bool {
	switch m {
	case ModeOff, ModeDryRun, ModeTestnet, ModeLive:
		return true
	}
	return false
}

// IsLiveRouting reports whether the mode routes orders to a real exchange
// endpoint. Which endpoint (testnet or production) is the exchange client's
// concern, not the engine's.
func (m TradingMode) IsLiveRouting() bool {
	return m == ModeTestnet || m == ModeLive
}

type TradingMarket string

const (
	MarketSpot    TradingMarket = "SPOT"
	MarketFutures TradingMarket = "FUTURES"
)

func (m TradingMarket) Valid() bool {
	return m == MarketSpot || m == MarketFutures
}

type SignalSource string

const (
	SourceManual           SignalSource = "manual"
	SourceStrategyPipeline SignalSource = "strategy-pipeline"
	SourceLiveScoring      SignalSource = "live-scoring"
)

type SignalAction string

const (
	ActionBuy  SignalAction = "BUY"
	ActionSell SignalAction = "SELL"
)

// TradeSignal is the input to the engine. It is created by a caller, consumed
// exactly once and never mutated. HOLD signals are filtered out before they
// reach the engine.
type TradeSignal struct {
	Source     SignalSource   `json:"source"`
	Symbol     string         `json:"symbol"`
	Action     SignalAction   `json:"action"`
	Confidence *float64       `json:"confidence,omitempty"`
	Score      *float64       `json:"score,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Market     *TradingMarket `json:"market,omitempty"`
	Price      *float64       `json:"price,omitempty"`
}
