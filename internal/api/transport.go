package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"MarketLens/internal/analysis"
	"MarketLens/internal/model"
)

type stockRequest struct {
	Symbol string
	Period model.Period
}

// decodeStockRequest reads the :symbol path parameter and ?period= query.
// A missing period is left empty for the service to default.
func decodeStockRequest(ctx *fasthttp.RequestCtx) (stockRequest, error) {
	symbol, _ := ctx.UserValue("symbol").(string)
	if symbol == "" {
		return stockRequest{}, model.ErrInvalidSymbol
	}
	req := stockRequest{Symbol: symbol}
	if raw := ctx.QueryArgs().Peek("period"); len(raw) > 0 {
		period, err := model.ParsePeriod(string(raw))
		if err != nil {
			return stockRequest{}, err
		}
		req.Period = period
	}
	return req, nil
}

func decodePredictRequest(ctx *fasthttp.RequestCtx) (*analysis.PredictRequest, error) {
	var req analysis.PredictRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		return nil, fmt.Errorf("%w: failed to decode JSON request: %v", errBadRequest, err)
	}
	if req.Period != "" {
		p, err := model.ParsePeriod(string(req.Period))
		if err != nil {
			return nil, err
		}
		req.Period = p
	}
	return &req, nil
}

// predictionResponse mirrors the dashboard's prediction payload.
type predictionResponse struct {
	Prediction  *model.Prediction `json:"prediction"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

func encodeJSON(ctx *fasthttp.RequestCtx, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
	return nil
}
