// Package api exposes the analysis service over HTTP.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/buaazp/fasthttprouter"
	fasthttpprometheus "github.com/flf2ko/fasthttp-prometheus"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"MarketLens/internal/analysis"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Config configures the HTTP server.
type Config struct {
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	MaxRequestBodySize int
	// MetricsSubsystem enables GET /metrics when set.
	MetricsSubsystem string
	// Provider is reported by /health.
	Provider string
}

// HandlerSettings binds a handler to a route.
type HandlerSettings struct {
	Path    string
	Method  string
	Handler fasthttp.RequestHandler
}

// MakeFastHTTPRouter registers every handler on a new router.
func MakeFastHTTPRouter(settings []*HandlerSettings) *fasthttprouter.Router {
	router := fasthttprouter.New()
	for _, s := range settings {
		router.Handle(s.Method, s.Path, s.Handler)
	}
	return router
}

// Server serves the stock analysis API.
type Server struct {
	svc      analysis.Service
	logger   log.Logger
	errProc  *ErrorProcessor
	cfg      Config
	started  time.Time
	fasthttp *fasthttp.Server
}

// NewServer wires routes, request ids, access logging and optional metrics.
func NewServer(svc analysis.Service, cfg Config, logger log.Logger) *Server {
	s := &Server{
		svc:     svc,
		logger:  logger,
		errProc: NewErrorProcessor(http.StatusInternalServerError, "internal error"),
		cfg:     cfg,
		started: time.Now(),
	}

	router := MakeFastHTTPRouter([]*HandlerSettings{
		{Path: "/api/stocks/:symbol/history", Method: http.MethodGet, Handler: s.handleHistory},
		{Path: "/api/stocks/:symbol/indicators", Method: http.MethodGet, Handler: s.handleIndicators},
		{Path: "/api/analysis/prediction", Method: http.MethodPost, Handler: s.handlePrediction},
		{Path: "/health", Method: http.MethodGet, Handler: s.handleHealth},
	})
	router.NotFound = func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetBodyString(`{"error":"route not found"}`)
	}

	var handler fasthttp.RequestHandler = router.Handler
	if cfg.MetricsSubsystem != "" {
		p := fasthttpprometheus.NewPrometheus(cfg.MetricsSubsystem)
		handler = p.WrapHandler(router)
	}

	s.fasthttp = &fasthttp.Server{
		Handler:            s.withRequestID(handler),
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Name:               "marketlens",
	}
	return s
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	_ = level.Info(s.logger).Log("msg", "starting http server", "addr", addr)
	return s.fasthttp.ListenAndServe(addr)
}

// Serve blocks serving on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.fasthttp.Serve(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.fasthttp.Shutdown()
}

func (s *Server) withRequestID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		begin := time.Now()
		id := string(ctx.Request.Header.Peek(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.SetUserValue("requestID", id)
		ctx.Response.Header.Set(RequestIDHeader, id)

		next(ctx)

		_ = level.Info(s.logger).Log(
			"msg", "request",
			"request_id", id,
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"status", ctx.Response.StatusCode(),
			"elapsed", time.Since(begin),
		)
	}
}

func (s *Server) handleHistory(ctx *fasthttp.RequestCtx) {
	req, err := decodeStockRequest(ctx)
	if err != nil {
		s.errProc.Encode(ctx, err)
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, analysis.Timeout)
	defer cancel()

	series, err := s.svc.History(timeoutCtx, req.Symbol, req.Period)
	if err != nil {
		s.errProc.Encode(ctx, err)
		return
	}
	if err := encodeJSON(ctx, series); err != nil {
		s.errProc.Encode(ctx, err)
	}
}

func (s *Server) handleIndicators(ctx *fasthttp.RequestCtx) {
	req, err := decodeStockRequest(ctx)
	if err != nil {
		s.errProc.Encode(ctx, err)
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, analysis.Timeout)
	defer cancel()

	report, err := s.svc.Indicators(timeoutCtx, req.Symbol, req.Period)
	if err != nil {
		s.errProc.Encode(ctx, err)
		return
	}
	if err := encodeJSON(ctx, report); err != nil {
		s.errProc.Encode(ctx, err)
	}
}

func (s *Server) handlePrediction(ctx *fasthttp.RequestCtx) {
	req, err := decodePredictRequest(ctx)
	if err != nil {
		s.errProc.Encode(ctx, err)
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, analysis.Timeout)
	defer cancel()

	p, err := s.svc.Predict(timeoutCtx, req)
	if err != nil {
		s.errProc.Encode(ctx, err)
		return
	}
	resp := predictionResponse{Prediction: p, GeneratedAt: p.GeneratedAt}
	if err := encodeJSON(ctx, resp); err != nil {
		s.errProc.Encode(ctx, err)
	}
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	_ = encodeJSON(ctx, map[string]interface{}{
		"status":   "ok",
		"provider": s.cfg.Provider,
		"uptime":   time.Since(s.started).Round(time.Second).String(),
	})
}
