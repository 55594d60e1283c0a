package connectors

import (
	"context"
	"time"

	"tradecore/src/model"
)

// PlaceOrderRequest is the engine-facing order shape. Market tags which
// product the order targets; the client decides the concrete endpoint.
type PlaceOrderRequest struct {
	Symbol   string
	Side     model.SignalAction
	Quantity float64
	Price    *float64
	Market   model.TradingMarket
}

type PlaceOrderResult struct {
	OrderID   string
	Symbol    string
	Side      model.SignalAction
	Quantity  float64
	Price     float64
	Status    string
	Timestamp time.Time
}

type PositionResult struct {
	Symbol string
	Side   string
	Size   float64
}

type AccountInfo struct {
	AvailableBalance float64
	AccountEquity    float64
	UnrealisedPNL    float64
	MarginBalance    float64
}

// ExchangeClient places orders and reports account state. Implementations
// must bound every call with a timeout; a timeout surfaces as an error, never
// as an assumed success.
type ExchangeClient interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error)
	GetOpenPositions(ctx context.Context) ([]PositionResult, error)
	GetAccountInfo(ctx context.Context) (*AccountInfo, error)
}
