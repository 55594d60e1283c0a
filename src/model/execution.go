package model

// Outcome tags the terminal state of one ExecuteSignal run. Callers that need
// to branch programmatically match on the tag; Reason carries the
// human-readable message for logs and UI.
type Outcome string

const (
	OutcomeBlockedByMode      Outcome = "blocked-by-mode"
	OutcomeBlockedByRisk      Outcome = "blocked-by-risk"
	OutcomeBlockedMissingData Outcome = "blocked-by-missing-data"
	OutcomeSimulatedFill      Outcome = "simulated-fill"
	OutcomeLiveFill           Outcome = "live-fill"
	OutcomeLiveRejection      Outcome = "live-rejection"
	OutcomeNotImplemented     Outcome = "not-implemented"
)

// Stable reason strings. Callers and tests match on these, so the vocabulary
// must not drift.
const (
	ReasonTradingDisabled    = "trading-disabled"
	ReasonNoMarketData       = "no-market-data"
	ReasonSpotNotImplemented = "SPOT trading not implemented"
)

// ExecutionResult is what ExecuteSignal hands back. Executed is true only if
// an order, simulated or real, was actually created with FILLED status.
type ExecutionResult struct {
	Executed bool          `json:"executed"`
	Outcome  Outcome       `json:"outcome"`
	Reason   string        `json:"reason,omitempty"`
	Market   TradingMarket `json:"market"`
	Order    *Order        `json:"order,omitempty"`
}
