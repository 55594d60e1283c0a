package model

import "time"

const (
	OrderStatusFilled   = "FILLED"
	OrderStatusRejected = "REJECTED"
)

// Dry-run order ids carry these prefixes so audit logs can always tell a
// simulated fill from a real one.
const (
	DryRunSpotPrefix    = "DRY_SPOT_"
	DryRunFuturesPrefix = "DRY_FUTURES_"
)

// Order is the outcome of a successful or simulated execution. For simulated
// fills OrderID is synthesized with a DRY_ prefix; for real fills it is the
// identifier returned by the exchange.
type Order struct {
	OrderID   string       `json:"orderId"`
	Symbol    string       `json:"symbol"`
	Side      SignalAction `json:"side"`
	Quantity  float64      `json:"quantity"`
	Price     float64      `json:"price"`
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Error     string       `json:"error,omitempty"`
}
