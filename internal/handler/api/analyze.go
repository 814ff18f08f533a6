package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"FinSight/internal/domain/models"
	icache "FinSight/internal/service/cache"
	imetrics "FinSight/internal/service/metrics"
	"FinSight/internal/service/ratelimit"
	"FinSight/internal/usecase"
	xhttp "FinSight/pkg/http"
	applogger "FinSight/pkg/logger"
)

const (
	responseTTL        = time.Minute
	clientRateCap      = 10
	clientRefillPerSec = 0.5
)

// AnalyzeHandler exposes the decision pipeline over a thin read-only route.
// Identical requests inside the response TTL are served the cached payload,
// which the pipeline's determinism makes byte-identical anyway.
type AnalyzeHandler struct {
	log       *applogger.Logger
	analyzer  *usecase.Analyzer
	respCache icache.BytesCache
	limiter   *ratelimit.Limiter
}

func NewAnalyzeHandler(l *applogger.Logger, analyzer *usecase.Analyzer, respCache icache.BytesCache) *AnalyzeHandler {
	imetrics.Register()
	return &AnalyzeHandler{
		log:       l,
		analyzer:  analyzer,
		respCache: respCache,
		limiter:   ratelimit.New(),
	}
}

// RegisterRoutes implements xhttp.Handler.
func (h *AnalyzeHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/analysis/:ticker", h.Analyze)
	e.GET("/health", h.Health)
}

func (h *AnalyzeHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	start := time.Now()
	defer func() {
		imetrics.HandlerLatency.WithLabelValues("analysis").Observe(time.Since(start).Seconds())
	}()

	if !h.limiter.Allow(c.RealIP(), clientRateCap, clientRefillPerSec) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
	}

	var req models.AnalysisRequest
	req.Ticker = c.Param("ticker")
	if verrs := xhttp.ReadAndValidateRequest(c, &req); verrs != nil {
		imetrics.HandlerErrors.WithLabelValues("analysis").Inc()
		return xhttp.BadRequestResponse(c, verrs)
	}

	key := cacheKey(req)
	if h.respCache != nil {
		if b, ok, err := h.respCache.GetBytes(key); err == nil && ok {
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	result, err := h.analyzer.Analyze(c.Request().Context(), req)
	if err != nil {
		imetrics.HandlerErrors.WithLabelValues("analysis").Inc()
		return xhttp.AppErrorResponse(c, h.mapDomainError(err))
	}

	if h.respCache != nil {
		if b, err := json.Marshal(xhttp.APIResponse{
			Status:  http.StatusOK,
			Message: http.StatusText(http.StatusOK),
			Data:    result,
		}); err == nil {
			_ = h.respCache.SetBytes(key, b, responseTTL)
		}
	}
	return xhttp.SuccessResponse(c, result)
}

func cacheKey(req models.AnalysisRequest) string {
	return fmt.Sprintf("analysis:%s:%s:%s:%d", req.Ticker, req.Tolerance, req.Horizon, req.LookbackDays)
}

// mapDomainError translates pipeline error types onto HTTP statuses.
func (h *AnalyzeHandler) mapDomainError(err error) error {
	var invalid *models.InvalidTickerError
	if errors.As(err, &invalid) {
		return xhttp.BadRequestError(invalid.Error())
	}
	var insufficient *models.InsufficientDataError
	if errors.As(err, &insufficient) {
		return xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", insufficient.Error(), http.StatusUnprocessableEntity)
	}
	var limited *models.RateLimitedError
	if errors.As(err, &limited) {
		return xhttp.NewAppError("ERR_RATE_LIMITED", "", limited.Error(), http.StatusTooManyRequests)
	}
	var unavailable *models.ProviderUnavailableError
	if errors.As(err, &unavailable) {
		return xhttp.NewAppError("ERR_PROVIDER_UNAVAILABLE", "", unavailable.Error(), http.StatusServiceUnavailable)
	}
	h.log.Error("analysis failed", applogger.Error(err))
	return xhttp.InternalError("analysis failed")
}
