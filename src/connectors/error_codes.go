package connectors

import "fmt"

// BinanceErrorCodes maps Binance futures API error codes to their symbolic
// names, for the cases where the API returns a code without a usable msg.
var BinanceErrorCodes = map[int]string{
	-1000: "UNKNOWN",                            // Unknown error while processing the request
	-1001: "DISCONNECTED",                       // Internal error; unable to process the request
	-1002: "UNAUTHORIZED",                       // Not authorized to execute the request
	-1003: "TOO_MANY_REQUESTS",                  // Request weight limit exceeded
	-1006: "UNEXPECTED_RESP",                    // Unexpected response from the matching engine
	-1007: "TIMEOUT",                            // Timeout waiting for the backend server
	-1008: "SERVER_BUSY",                        // Server overloaded
	-1015: "TOO_MANY_ORDERS",                    // Order rate limit exceeded
	-1021: "INVALID_TIMESTAMP",                  // Timestamp outside of recvWindow
	-1022: "INVALID_SIGNATURE",                  // Request signature invalid
	-1102: "MANDATORY_PARAM_EMPTY_OR_MALFORMED", // Required parameter missing or malformed
	-1111: "BAD_PRECISION",                      // Precision over the maximum for this asset
	-1121: "BAD_SYMBOL",                         // Invalid symbol
	-2010: "NEW_ORDER_REJECTED",                 // Order rejected by the matching engine
	-2011: "CANCEL_REJECTED",                    // Cancel rejected
	-2013: "NO_SUCH_ORDER",                      // Order does not exist
	-2014: "BAD_API_KEY_FMT",                    // API key format invalid
	-2015: "REJECTED_MBX_KEY",                   // Invalid API key, IP, or permissions
	-2018: "BALANCE_NOT_SUFFICIENT",             // Balance insufficient
	-2019: "MARGIN_NOT_SUFFICIENT",              // Margin insufficient
	-2020: "UNABLE_TO_FILL",                     // Unable to fill
	-2021: "ORDER_WOULD_IMMEDIATELY_TRIGGER",    // Stop order would trigger immediately
	-2022: "REDUCE_ONLY_REJECT",                 // Reduce-only order rejected
	-2025: "MAX_OPEN_ORDER_EXCEEDED",            // Reached the max open order limit
	-2027: "MAX_LEVERAGE_RATIO",                 // Exceeded the maximum allowable leverage
	-4003: "QUANTITY_LESS_THAN_ZERO",            // Quantity less than zero
	-4005: "QTY_LESS_THAN_MIN_QTY",              // Quantity below the symbol minimum
	-4131: "MARKET_ORDER_REJECT",                // Counterparty best price does not meet the PERCENT_PRICE filter
	-4164: "MIN_NOTIONAL",                       // Order notional below the symbol minimum
}

// GetErrorMsg returns the symbolic name for a Binance error code, or a generic
// message including the code when it is unknown.
func GetErrorMsg(code int) string {
	if msg, ok := BinanceErrorCodes[code]; ok {
		return msg
	}
	return fmt.Sprintf("UNKNOWN_BINANCE_ERROR_%d", code)
}
