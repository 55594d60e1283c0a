package model

import "time"

// SignalRecord is a trading signal queued in the database by an upstream
// strategy pipeline. The polling executor consumes pending records exactly
// once and marks them processed regardless of outcome; retry policy lives
// with the producer.
type SignalRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Source     string     `gorm:"size:50" json:"source"`
	Symbol     string     `gorm:"size:100;index" json:"symbol"`
	Action     string     `gorm:"size:20" json:"action"`
	Market     *string    `gorm:"size:20" json:"market,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	Score      *float64   `json:"score,omitempty"`
	Price      *float64   `json:"price,omitempty"`
	Processed  bool       `gorm:"not null;default:false;index" json:"processed"`
	ReceivedAt time.Time  `json:"received_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
}

func (SignalRecord) TableName() string {
	return "trade_signals"
}

// ToTradeSignal converts a queued row into the engine's input shape.
func (s *SignalRecord) ToTradeSignal() TradeSignal {
	signal := TradeSignal{
		Source:     SignalSource(s.Source),
		Symbol:     s.Symbol,
		Action:     SignalAction(s.Action),
		Confidence: s.Confidence,
		Score:      s.Score,
		Timestamp:  s.ReceivedAt,
		Price:      s.Price,
	}

	if s.Market != nil {
		market := TradingMarket(*s.Market)
		signal.Market = &market
	}

	return signal
}
