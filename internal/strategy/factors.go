package strategy

import "MarketLens/internal/model"

// RSI thresholds.
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
)

// ClassifyRSI maps the latest RSI to an action.
func ClassifyRSI(rsi float64) model.Signal {
	switch {
	case rsi > RSIOverbought:
		return model.Signal{Indicator: model.IndicatorRSI, Action: model.ActionSell, Label: "Overbought"}
	case rsi < RSIOversold:
		return model.Signal{Indicator: model.IndicatorRSI, Action: model.ActionBuy, Label: "Oversold"}
	default:
		return model.Signal{Indicator: model.IndicatorRSI, Action: model.ActionHold, Label: "Neutral"}
	}
}

// ClassifyMACD compares the MACD line with its signal line. There is no HOLD outcome:
// equality reads as bearish.
func ClassifyMACD(macd, signal float64) model.Signal {
	if macd > signal {
		return model.Signal{Indicator: model.IndicatorMACD, Action: model.ActionBuy, Label: "Bullish"}
	}
	return model.Signal{Indicator: model.IndicatorMACD, Action: model.ActionSell, Label: "Bearish"}
}

// ClassifyBollinger places the price relative to the bands.
func ClassifyBollinger(price, upper, lower float64) model.Signal {
	switch {
	case price > upper:
		return model.Signal{Indicator: model.IndicatorBollinger, Action: model.ActionSell, Label: "Overbought"}
	case price < lower:
		return model.Signal{Indicator: model.IndicatorBollinger, Action: model.ActionBuy, Label: "Oversold"}
	default:
		return model.Signal{Indicator: model.IndicatorBollinger, Action: model.ActionHold, Label: "Normal Range"}
	}
}

// ClassifyTrend scores moving-average alignment.
// Bull alignment: price > short > long
// Bear alignment: price < short < long
func ClassifyTrend(price, short, long float64) model.Signal {
	switch {
	case price > short && short > long:
		return model.Signal{Indicator: model.IndicatorTrend, Action: model.ActionBuy, Label: "Strong Uptrend"}
	case price < short && short < long:
		return model.Signal{Indicator: model.IndicatorTrend, Action: model.ActionSell, Label: "Strong Downtrend"}
	default:
		return model.Signal{Indicator: model.IndicatorTrend, Action: model.ActionHold, Label: "Sideways"}
	}
}

// Vote counts BUY and SELL signals; the larger side wins and a tie is HOLD.
// Every family carries the same weight.
func Vote(signals []model.Signal) model.Recommendation {
	var rec model.Recommendation
	for _, s := range signals {
		switch s.Action {
		case model.ActionBuy:
			rec.BuyCount++
		case model.ActionSell:
			rec.SellCount++
		}
	}
	switch {
	case rec.BuyCount > rec.SellCount:
		rec.Action = model.ActionBuy
	case rec.SellCount > rec.BuyCount:
		rec.Action = model.ActionSell
	default:
		rec.Action = model.ActionHold
	}
	return rec
}
