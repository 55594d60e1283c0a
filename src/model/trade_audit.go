package model

import "time"

// TradeAudit is the persisted record of one ExecuteSignal run: the signal as
// received, the mode and market the decision was evaluated against, and the
// resulting order or rejection. Inserted best-effort by the engine.
type TradeAudit struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Source     string    `gorm:"size:50" json:"source"`
	Symbol     string    `gorm:"size:100;index" json:"symbol"`
	Side       string    `gorm:"size:20" json:"side"`
	Market     string    `gorm:"size:20;index" json:"market"`
	Mode       string    `gorm:"size:20" json:"mode"`
	Confidence *float64  `json:"confidence,omitempty"`
	Score      *float64  `json:"score,omitempty"`
	SignalAt   time.Time `json:"signal_at"`

	NotionalUSDT float64 `json:"notional_usdt"`

	Outcome string `gorm:"size:50;not null;index" json:"outcome"`
	Reason  string `gorm:"size:255" json:"reason"`

	// Snapshot of the order, when one was created.
	OrderID      string  `gorm:"size:255;index" json:"order_id"`
	OrderStatus  string  `gorm:"size:50" json:"order_status"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	RealizedPnl  float64 `json:"realized_pnl"`
	ErrorMessage *string `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (TradeAudit) TableName() string {
	return "trade_audits"
}
