// REST API CLIENT FOR BINANCE USDT-M FUTURES
// RESTY ONLY + INTERNAL RETRY
package connectors

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"tradecore/src/model"
)

const (
	// Default retry configuration
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second

	defaultRecvWindowMs = 5000
)

// -----------------------------
// RAW API STRUCTURES
// -----------------------------

type binanceOrderResponse struct {
	OrderID     int64  `json:"orderId"`
	Symbol      string `json:"symbol"`
	Status      string `json:"status"`
	Side        string `json:"side"`
	AvgPrice    string `json:"avgPrice"`
	ExecutedQty string `json:"executedQty"`
	UpdateTime  int64  `json:"updateTime"`
}

type binancePositionRisk struct {
	Symbol      string `json:"symbol"`
	PositionAmt string `json:"positionAmt"`
	PositionSid string `json:"positionSide"`
}

type binanceAccountResponse struct {
	TotalMarginBalance string `json:"totalMarginBalance"`
	TotalWalletBalance string `json:"totalWalletBalance"`
	TotalUnrealized    string `json:"totalUnrealizedProfit"`
	AvailableBalance   string `json:"availableBalance"`
}

type binanceAPIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// -----------------------------
// AUTHENTICATED CLIENT
// -----------------------------

// BinanceFuturesClient talks to the Binance USDT-M futures REST API. Whether
// it targets testnet or production is purely a matter of the configured base
// URL; callers never branch on it.
type BinanceFuturesClient struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

func NewBinanceFuturesClient(apiKey, apiSecret, baseURL string) *BinanceFuturesClient {
	retryCount := defaultRetryAttempts - 1

	if baseURL == "" {
		baseURL = "https://testnet.binancefuture.com"
		logger.Warnf("No base URL provided, using default: %s", baseURL)
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(retryCount).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &BinanceFuturesClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		http:      httpClient,
	}
}

// signQuery appends timestamp, recvWindow and the HMAC-SHA256 signature the
// way Binance expects: the signature covers the full query string.
func (c *BinanceFuturesClient) signQuery(params url.Values) string {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", strconv.Itoa(defaultRecvWindowMs))

	encoded := params.Encode()

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(encoded))
	sig := hex.EncodeToString(mac.Sum(nil))

	return encoded + "&signature=" + sig
}

func (c *BinanceFuturesClient) doRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	query := c.signQuery(params)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetQueryString(query).
		Execute(method, path)
	if err != nil {
		return nil, err
	}

	raw := resp.Body()

	if resp.StatusCode() != 200 {
		var apiErr binanceAPIError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Code != 0 {
			if apiErr.Msg == "" {
				apiErr.Msg = GetErrorMsg(apiErr.Code)
			}
			return nil, fmt.Errorf("binance error %d: %s", apiErr.Code, apiErr.Msg)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), string(raw))
	}

	return raw, nil
}

// -----------------------------
// TRADING METHODS
// -----------------------------

// PlaceOrder sends a market order. SPOT requests are refused here: the spot
// execution path is not wired end-to-end and must surface as an explicit
// rejection, never as a silent no-op.
func (c *BinanceFuturesClient) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if req.Market == model.MarketSpot {
		return nil, fmt.Errorf("%s", model.ReasonSpotNotImplemented)
	}

	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", string(req.Side))
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(req.Quantity, 'f', -1, 64))
	params.Set("newOrderRespType", "RESULT")
	params.Set("newClientOrderId", fmt.Sprintf("tc-%d", time.Now().UnixNano()))

	raw, err := c.doRequest(ctx, "POST", "/fapi/v1/order", params)
	if err != nil {
		return nil, err
	}

	var parsed binanceOrderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	price := parseFloatSafe("avgPrice", parsed.AvgPrice)
	if price == 0 && req.Price != nil {
		price = *req.Price
	}

	return &PlaceOrderResult{
		OrderID:   strconv.FormatInt(parsed.OrderID, 10),
		Symbol:    parsed.Symbol,
		Side:      model.SignalAction(parsed.Side),
		Quantity:  parseFloatSafe("executedQty", parsed.ExecutedQty),
		Price:     price,
		Status:    parsed.Status,
		Timestamp: time.UnixMilli(parsed.UpdateTime).UTC(),
	}, nil
}

// -----------------------------
// ACCOUNT & POSITION METHODS
// -----------------------------

func (c *BinanceFuturesClient) GetOpenPositions(ctx context.Context) ([]PositionResult, error) {
	raw, err := c.doRequest(ctx, "GET", "/fapi/v2/positionRisk", url.Values{})
	if err != nil {
		return nil, err
	}

	var parsed []binancePositionRisk
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	positions := make([]PositionResult, 0, len(parsed))
	for _, p := range parsed {
		size := parseFloatSafe("positionAmt", p.PositionAmt)
		if size == 0 {
			continue
		}

		side := "LONG"
		if size < 0 {
			side = "SHORT"
			size = -size
		}

		positions = append(positions, PositionResult{
			Symbol: p.Symbol,
			Side:   side,
			Size:   size,
		})
	}

	return positions, nil
}

func (c *BinanceFuturesClient) GetAccountInfo(ctx context.Context) (*AccountInfo, error) {
	raw, err := c.doRequest(ctx, "GET", "/fapi/v2/account", url.Values{})
	if err != nil {
		return nil, err
	}

	var parsed binanceAccountResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	return &AccountInfo{
		AvailableBalance: parseFloatSafe("availableBalance", parsed.AvailableBalance),
		AccountEquity:    parseFloatSafe("totalWalletBalance", parsed.TotalWalletBalance),
		UnrealisedPNL:    parseFloatSafe("totalUnrealizedProfit", parsed.TotalUnrealized),
		MarginBalance:    parseFloatSafe("totalMarginBalance", parsed.TotalMarginBalance),
	}, nil
}

// parseFloatSafe logs and defaults to 0 instead of aborting the whole mapping
// when the exchange hands back an empty or malformed numeric string.
func parseFloatSafe(field, v string) float64 {
	if v == "" {
		return 0
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"field": field,
			"value": v,
		}).WithError(err).Error("Failed to parse float from exchange response field; defaulting to 0")
		return 0
	}
	return f
}
