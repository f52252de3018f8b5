package model

// Action is a BUY/SELL/HOLD classification.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Indicator family names used on signals.
const (
	IndicatorRSI       = "RSI"
	IndicatorMACD      = "MACD"
	IndicatorBollinger = "BOLLINGER"
	IndicatorTrend     = "MA_TREND"
)

// Signal is one indicator family's classification of its latest value.
type Signal struct {
	Indicator string `json:"indicator"`
	Action    Action `json:"action"`
	Label     string `json:"label"`
}

// Recommendation is the majority vote across indicator families.
type Recommendation struct {
	Action    Action `json:"action"`
	BuyCount  int    `json:"buyCount"`
	SellCount int    `json:"sellCount"`
}
