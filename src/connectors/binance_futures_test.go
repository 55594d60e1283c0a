package connectors

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"

	"tradecore/src/model"
)

func newTestClient(baseURL string) *BinanceFuturesClient {
	restyClient := resty.New()
	restyClient.SetBaseURL(baseURL)

	return &BinanceFuturesClient{
		apiKey:    "test-key",
		apiSecret: "test-secret",
		baseURL:   baseURL,
		http:      restyClient,
	}
}

type assertError struct{}

func (assertError) Error() string { return "err" }

func fakeResponse(status int) *resty.Response {
	return &resty.Response{RawResponse: &http.Response{StatusCode: status}}
}

func TestIsRetryableResp(t *testing.T) {
	cases := []struct {
		name string
		resp *resty.Response
		err  error
		want bool
	}{
		{name: "error present", err: assertError{}, want: true},
		{name: "server error", resp: fakeResponse(500), want: true},
		{name: "too many requests", resp: fakeResponse(429), want: true},
		{name: "timeout", resp: fakeResponse(408), want: true},
		{name: "ok response", resp: fakeResponse(200), want: false},
		{name: "client error", resp: fakeResponse(400), want: false},
		{name: "nil resp", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := isRetryableResp(tc.resp, tc.err)
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSignQuery(t *testing.T) {
	client := newTestClient("http://localhost")

	params := url.Values{}
	params.Set("symbol", "BTCUSDT")

	signed := client.signQuery(params)

	parts := strings.Split(signed, "&signature=")
	if len(parts) != 2 {
		t.Fatalf("expected a signature suffix, got %q", signed)
	}

	payload, signature := parts[0], parts[1]

	if !strings.Contains(payload, "symbol=BTCUSDT") {
		t.Fatalf("payload missing symbol: %q", payload)
	}
	if !strings.Contains(payload, "timestamp=") || !strings.Contains(payload, "recvWindow=5000") {
		t.Fatalf("payload missing auth params: %q", payload)
	}

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))

	if signature != expected {
		t.Fatalf("signature mismatch: expected %s, got %s", expected, signature)
	}
}

func TestPlaceOrder(t *testing.T) {
	var gotPath, gotMethod, gotAPIKey string
	var gotQuery url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotAPIKey = r.Header.Get("X-MBX-APIKEY")
		gotQuery = r.URL.Query()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"orderId": 4055311,
			"symbol": "BTCUSDT",
			"status": "FILLED",
			"side": "BUY",
			"avgPrice": "65010.50",
			"executedQty": "0.001",
			"updateTime": 1767225600000
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	price := 65000.0
	result, err := client.PlaceOrder(context.Background(), PlaceOrderRequest{
		Symbol:   "BTCUSDT",
		Side:     model.ActionBuy,
		Quantity: 0.001,
		Price:    &price,
		Market:   model.MarketFutures,
	})
	if err != nil {
		t.Fatalf("unexpected error placing order: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/fapi/v1/order" {
		t.Fatalf("unexpected endpoint: %s %s", gotMethod, gotPath)
	}
	if gotAPIKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotAPIKey)
	}
	if gotQuery.Get("symbol") != "BTCUSDT" || gotQuery.Get("side") != "BUY" || gotQuery.Get("type") != "MARKET" {
		t.Fatalf("unexpected order query: %v", gotQuery)
	}
	if gotQuery.Get("signature") == "" {
		t.Fatalf("expected signed query, got %v", gotQuery)
	}

	if result.OrderID != "4055311" {
		t.Fatalf("unexpected order id: %q", result.OrderID)
	}
	if result.Status != "FILLED" || result.Price != 65010.50 || result.Quantity != 0.001 {
		t.Fatalf("unexpected order result: %+v", result)
	}
}

func TestPlaceOrderRefusesSpot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("spot order must never reach the exchange endpoint")
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.PlaceOrder(context.Background(), PlaceOrderRequest{
		Symbol:   "BTCUSDT",
		Side:     model.ActionBuy,
		Quantity: 0.001,
		Market:   model.MarketSpot,
	})
	if err == nil {
		t.Fatal("expected spot order to be refused")
	}
	if err.Error() != model.ReasonSpotNotImplemented {
		t.Fatalf("expected stable spot rejection message, got %q", err.Error())
	}
}

func TestPlaceOrderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": -2019, "msg": "Margin is insufficient."}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.PlaceOrder(context.Background(), PlaceOrderRequest{
		Symbol:   "BTCUSDT",
		Side:     model.ActionBuy,
		Quantity: 1000,
		Market:   model.MarketFutures,
	})
	if err == nil {
		t.Fatal("expected api error to surface")
	}
	if !strings.Contains(err.Error(), "Margin is insufficient") {
		t.Fatalf("expected exchange message surfaced, got %q", err.Error())
	}
}

func TestPlaceOrderAPIErrorCodeOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": -2019}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.PlaceOrder(context.Background(), PlaceOrderRequest{
		Symbol:   "BTCUSDT",
		Side:     model.ActionBuy,
		Quantity: 1000,
		Market:   model.MarketFutures,
	})
	if err == nil {
		t.Fatal("expected api error to surface")
	}
	if !strings.Contains(err.Error(), "MARGIN_NOT_SUFFICIENT") {
		t.Fatalf("expected symbolic error name for a msg-less code, got %q", err.Error())
	}
}

func TestGetErrorMsg(t *testing.T) {
	if got := GetErrorMsg(-2019); got != "MARGIN_NOT_SUFFICIENT" {
		t.Fatalf("unexpected message for -2019: %q", got)
	}
	if got := GetErrorMsg(-9999); got != "UNKNOWN_BINANCE_ERROR_-9999" {
		t.Fatalf("unexpected message for unknown code: %q", got)
	}
}

func TestGetOpenPositions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v2/positionRisk" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"symbol": "BTCUSDT", "positionAmt": "0.002", "positionSide": "BOTH"},
			{"symbol": "ETHUSDT", "positionAmt": "-1.5", "positionSide": "BOTH"},
			{"symbol": "SOLUSDT", "positionAmt": "0", "positionSide": "BOTH"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	positions, err := client.GetOpenPositions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error fetching positions: %v", err)
	}

	// Flat entries are dropped; shorts come back with positive size.
	if len(positions) != 2 {
		t.Fatalf("expected 2 open positions, got %d: %+v", len(positions), positions)
	}
	if positions[0].Symbol != "BTCUSDT" || positions[0].Side != "LONG" || positions[0].Size != 0.002 {
		t.Fatalf("unexpected long position: %+v", positions[0])
	}
	if positions[1].Symbol != "ETHUSDT" || positions[1].Side != "SHORT" || positions[1].Size != 1.5 {
		t.Fatalf("unexpected short position: %+v", positions[1])
	}
}

func TestGetAccountInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v2/account" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"totalMarginBalance": "1100.25",
			"totalWalletBalance": "1200.00",
			"totalUnrealizedProfit": "-35.5",
			"availableBalance": "950.75"
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	info, err := client.GetAccountInfo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error fetching account info: %v", err)
	}

	if info.AvailableBalance != 950.75 {
		t.Fatalf("unexpected available balance: %v", info.AvailableBalance)
	}
	if info.AccountEquity != 1200 || info.UnrealisedPNL != -35.5 || info.MarginBalance != 1100.25 {
		t.Fatalf("unexpected account info: %+v", info)
	}
}

func TestParseFloatSafe(t *testing.T) {
	cases := []struct {
		value string
		want  float64
	}{
		{value: "65000.5", want: 65000.5},
		{value: "", want: 0},
		{value: "not-a-number", want: 0},
		{value: "-12.25", want: -12.25},
	}

	for _, tc := range cases {
		if got := parseFloatSafe("field", tc.value); got != tc.want {
			t.Fatalf("parseFloatSafe(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
