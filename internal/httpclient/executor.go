package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maplelane/questrade-go/internal/metrics"
)

// ErrDecode marks responses whose body could not be parsed as JSON.
var ErrDecode = errors.New("decode failed")

// Executor handles JSON request execution against a venue API: per-request
// correlation IDs, latency logging, metrics, and status classification.
// Failed requests are not retried; retry policy belongs to the caller.
type Executor struct {
	logger       *zap.Logger
	http         *http.Client
	venueTag     string
	errorHandler func(status int, body []byte) error
}

// New creates an Executor. errorHandler is called on non-2xx responses to
// produce a venue-specific error; if nil, a generic error is returned.
func New(
	logger *zap.Logger,
	httpClient *http.Client,
	venueTag string,
	errorHandler func(status int, body []byte) error,
) *Executor {
	return &Executor{
		logger:       logger,
		http:         httpClient,
		venueTag:     venueTag,
		errorHandler: errorHandler,
	}
}

// DoJSON executes req and JSON-decodes the response body into out. A nil out
// discards the body. Cancellation is driven by the request's context.
func (e *Executor) DoJSON(req *http.Request, out any) error {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)

	start := time.Now()
	resp, err := e.http.Do(req)
	if err != nil {
		metrics.IncAPIRequest(e.venueTag, req.Method, "error")
		e.logger.Warn(e.venueTag+".http_failed",
			zap.String("url", req.URL.String()),
			zap.String("request_id", reqID),
			zap.Error(err))
		return fmt.Errorf("%s request failed: %w", e.venueTag, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncAPIRequest(e.venueTag, req.Method, "error")
		return fmt.Errorf("%s read response: %w", e.venueTag, err)
	}
	elapsed := time.Since(start)

	metrics.IncAPIRequest(e.venueTag, req.Method, strconv.Itoa(resp.StatusCode))
	metrics.ObserveAPIRequestDuration(e.venueTag, req.Method, elapsed)

	if resp.StatusCode >= 400 {
		e.logger.Warn(e.venueTag+".http_error",
			zap.Int("status", resp.StatusCode),
			zap.String("url", req.URL.String()),
			zap.String("request_id", reqID),
			zap.Duration("latency", elapsed))
		if e.errorHandler != nil {
			return e.errorHandler(resp.StatusCode, body)
		}
		return fmt.Errorf("%s returned %d", e.venueTag, resp.StatusCode)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			e.logger.Warn(e.venueTag+".decode_failed",
				zap.String("url", req.URL.String()),
				zap.String("request_id", reqID),
				zap.Error(err))
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}

	e.logger.Debug(e.venueTag+".http_success",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	return nil
}
