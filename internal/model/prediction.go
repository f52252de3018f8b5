package model

import "time"

// RiskLevel grades a prediction by its confidence.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// PriceRange is a closed price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Prediction is a synthesized forecast. It is derived on every request and never stored.
type Prediction struct {
	Symbol          string     `json:"symbol"`
	Model           string     `json:"model"`
	PredictedPrice  float64    `json:"predictedPrice"`
	Confidence      int        `json:"confidence"` // 0 ~ 100
	Recommendation  Action     `json:"recommendation"`
	Timeframe       string     `json:"timeframe"`
	Reasoning       string     `json:"reasoning"`
	TargetPrice     *float64   `json:"targetPrice,omitempty"`
	StopLoss        *float64   `json:"stopLoss,omitempty"`
	SupportLevel    float64    `json:"supportLevel"`
	ResistanceLevel float64    `json:"resistanceLevel"`
	RiskLevel       RiskLevel  `json:"riskLevel"`
	PriceRange      PriceRange `json:"priceRange"`
	GeneratedAt     time.Time  `json:"generatedAt"`
}
