package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tradecore/src/model"
)

// CandleSink receives closed 1m candles from the stream.
type CandleSink interface {
	UpsertCandle1m(ctx context.Context, candle *model.OHLCV1m) error
}

// KlineStream subscribes to Binance kline websocket channels and upserts
// closed candles into the sink, keeping reference prices fresh for dry-run
// executions without polling the REST API.
type KlineStream struct {
	wsBaseURL string
	symbols   []string
	sink      CandleSink
	log       *logger.Entry
}

func NewKlineStream(wsBaseURL string, symbols []string, sink CandleSink) *KlineStream {
	if wsBaseURL == "" {
		wsBaseURL = "wss://stream.binancefuture.com"
	}

	return &KlineStream{
		wsBaseURL: wsBaseURL,
		symbols:   symbols,
		sink:      sink,
		log:       logger.WithField("component", "KlineStream"),
	}
}

type klineEvent struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTime int64  `json:"t"`
		Open     string `json:"o"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Close    string `json:"c"`
		Volume   string `json:"v"`
		Closed   bool   `json:"x"`
	} `json:"k"`
}

// Run blocks until ctx is canceled, reconnecting with a fixed backoff when
// the connection drops.
func (s *KlineStream) Run(ctx context.Context) error {
	if len(s.symbols) == 0 {
		return fmt.Errorf("no symbols to subscribe")
	}

	const reconnectDelay = 5 * time.Second

	for {
		if err := s.consume(ctx); err != nil {
			if ctx.Err() != nil {
				s.log.Info("kline stream stopped")
				return nil
			}
			s.log.WithError(err).Error("kline stream dropped, reconnecting")
		}

		select {
		case <-ctx.Done():
			s.log.Info("kline stream stopped")
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *KlineStream) consume(ctx context.Context) error {
	streams := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		streams = append(streams, strings.ToLower(sym)+"@kline_1m")
	}

	wsURL := s.wsBaseURL + "/ws/" + strings.Join(streams, "/")

	dialer := websocket.Dialer{
		HandshakeTimeout:  15 * time.Second,
		EnableCompression: true,
		Proxy:             http.ProxyFromEnvironment,
	}

	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial failed: %w", err)
	}
	defer conn.Close()

	s.log.WithField("url", wsURL).Info("kline stream connected")

	// Close the socket when ctx ends so ReadMessage unblocks.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("ws read failed: %w", err)
		}

		var event klineEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			s.log.WithError(err).Debug("skipping unparsable ws frame")
			continue
		}

		if event.EventType != "kline" || !event.Kline.Closed {
			continue
		}

		candle, err := s.toCandle(&event)
		if err != nil {
			s.log.WithError(err).WithField("symbol", event.Symbol).
				Error("skipping malformed kline event")
			continue
		}

		if err := s.sink.UpsertCandle1m(ctx, candle); err != nil {
			s.log.WithError(err).WithField("symbol", candle.Symbol).
				Error("failed to persist candle")
		}
	}
}

func (s *KlineStream) toCandle(event *klineEvent) (*model.OHLCV1m, error) {
	open, err := decimal.NewFromString(event.Kline.Open)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	high, err := decimal.NewFromString(event.Kline.High)
	if err != nil {
		return nil, fmt.Errorf("high: %w", err)
	}
	low, err := decimal.NewFromString(event.Kline.Low)
	if err != nil {
		return nil, fmt.Errorf("low: %w", err)
	}
	closePx, err := decimal.NewFromString(event.Kline.Close)
	if err != nil {
		return nil, fmt.Errorf("close: %w", err)
	}
	volume, err := decimal.NewFromString(event.Kline.Volume)
	if err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}

	return &model.OHLCV1m{
		Symbol:   event.Symbol,
		Datetime: time.UnixMilli(event.Kline.OpenTime).UTC(),
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePx,
		Volume:   volume,
	}, nil
}
