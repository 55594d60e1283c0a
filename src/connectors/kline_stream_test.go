package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tradecore/src/model"
)

type recordingSink struct {
	mu      sync.Mutex
	candles []*model.OHLCV1m
}

func (s *recordingSink) UpsertCandle1m(_ context.Context, candle *model.OHLCV1m) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candles = append(s.candles, candle)
	return nil
}

func (s *recordingSink) all() []*model.OHLCV1m {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.OHLCV1m(nil), s.candles...)
}

func TestKlineStreamToCandle(t *testing.T) {
	stream := NewKlineStream("", []string{"BTCUSDT"}, &recordingSink{})

	event := &klineEvent{EventType: "kline", Symbol: "BTCUSDT"}
	event.Kline.OpenTime = 1767225600000
	event.Kline.Open = "65000.1"
	event.Kline.High = "65100.2"
	event.Kline.Low = "64900.3"
	event.Kline.Close = "65050.4"
	event.Kline.Volume = "12.5"
	event.Kline.Closed = true

	candle, err := stream.toCandle(event)
	if err != nil {
		t.Fatalf("unexpected error converting event: %v", err)
	}

	if candle.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected symbol %q", candle.Symbol)
	}
	if !candle.Datetime.Equal(time.UnixMilli(1767225600000).UTC()) {
		t.Fatalf("unexpected candle time %v", candle.Datetime)
	}
	if candle.Close.String() != "65050.4" || candle.Volume.String() != "12.5" {
		t.Fatalf("unexpected candle values: %+v", candle)
	}
}

func TestKlineStreamToCandleMalformed(t *testing.T) {
	stream := NewKlineStream("", []string{"BTCUSDT"}, &recordingSink{})

	event := &klineEvent{EventType: "kline", Symbol: "BTCUSDT"}
	event.Kline.Open = "not-a-number"

	if _, err := stream.toCandle(event); err == nil {
		t.Fatal("expected malformed kline to error")
	}
}

func TestKlineStreamRunRequiresSymbols(t *testing.T) {
	stream := NewKlineStream("", nil, &recordingSink{})

	if err := stream.Run(context.Background()); err == nil {
		t.Fatal("expected error with no symbols to subscribe")
	}
}

func TestKlineStreamConsume(t *testing.T) {
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "btcusdt@kline_1m") {
			t.Errorf("unexpected subscription path %s", r.URL.Path)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// One open candle (ignored), one closed candle (persisted).
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"kline","s":"BTCUSDT","k":{"t":1767225600000,"o":"65000","h":"65100","l":"64900","c":"65050","v":"12.5","x":false}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"kline","s":"BTCUSDT","k":{"t":1767225600000,"o":"65000","h":"65100","l":"64900","c":"65050","v":"12.5","x":true}}`))

		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	sink := &recordingSink{}
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	stream := NewKlineStream(wsURL, []string{"BTCUSDT"}, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// consume exits when the server closes the connection.
	_ = stream.consume(ctx)

	candles := sink.all()
	if len(candles) != 1 {
		t.Fatalf("expected 1 closed candle persisted, got %d", len(candles))
	}
	if candles[0].Symbol != "BTCUSDT" || candles[0].Close.String() != "65050" {
		t.Fatalf("unexpected candle: %+v", candles[0])
	}
}
