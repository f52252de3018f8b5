package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/valyala/fasthttp"

	"MarketLens/internal/collector"
	"MarketLens/internal/model"
	"MarketLens/internal/predictor"
	"MarketLens/internal/strategy"
)

// errBadRequest marks request decoding failures.
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

// ErrorProcessor writes service errors as JSON with a mapped status code.
type ErrorProcessor struct {
	defaultCode    int
	defaultMessage string
}

// NewErrorProcessor ...
func NewErrorProcessor(defaultCode int, defaultMessage string) *ErrorProcessor {
	return &ErrorProcessor{defaultCode: defaultCode, defaultMessage: defaultMessage}
}

// Encode writes err to the response. Unmapped errors are reported with the
// default message so internals do not leak to clients.
func (e *ErrorProcessor) Encode(ctx *fasthttp.RequestCtx, err error) {
	code := e.status(err)
	msg := err.Error()
	if code == e.defaultCode {
		msg = e.defaultMessage
	}
	body, _ := json.Marshal(errorBody{Error: msg})
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(code)
	ctx.SetBody(body)
}

func (e *ErrorProcessor) status(err error) int {
	var ne net.Error
	switch {
	case errors.Is(err, collector.ErrBadProviderData):
		return http.StatusBadGateway
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidSymbol),
		errors.Is(err, model.ErrUnknownPeriod),
		errors.Is(err, model.ErrInvalidBar),
		errors.Is(err, predictor.ErrInvalidPrice):
		return http.StatusBadRequest
	case errors.Is(err, collector.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, strategy.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &ne) && ne.Timeout():
		return http.StatusGatewayTimeout
	default:
		return e.defaultCode
	}
}
