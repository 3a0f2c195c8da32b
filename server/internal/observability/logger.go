package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// HeaderRequestID carries the request ID in and out.
	HeaderRequestID = "X-Request-ID"

	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldMethod is the field name for the HTTP method.
	LogFieldMethod = "method"
	// LogFieldRoute is the field name for the matched route.
	LogFieldRoute = "route"
	// LogFieldStatus is the field name for the response status.
	LogFieldStatus = "status"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
)

// RequestContext represents the context for a single request with structured logging.
type RequestContext struct {
	RequestID string
	Method    string
	Route     string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRequestContext creates a request context. An empty requestID gets a
// generated one.
func NewRequestContext(logger *slog.Logger, requestID, method, route string) *RequestContext {
	if requestID == "" {
		requestID = generateRequestID()
	}
	return &RequestContext{
		RequestID: requestID,
		Method:    method,
		Route:     route,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// With returns a logger carrying the request attributes.
func (r *RequestContext) With() *slog.Logger {
	return r.Logger.With(
		slog.String(LogFieldRequestID, r.RequestID),
		slog.String(LogFieldMethod, r.Method),
		slog.String(LogFieldRoute, r.Route),
	)
}

// Duration returns the elapsed time since the request started.
func (r *RequestContext) Duration() time.Duration {
	return time.Since(r.StartTime)
}

func generateRequestID() string {
	return uuid.New().String()
}

type ctxKey struct{}

// WithRequestContext adds the request context to the context.
func WithRequestContext(ctx context.Context, reqCtx *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, reqCtx)
}

// FromContext extracts the request context from the context.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	reqCtx, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return reqCtx, ok
}

// Logger returns the request-scoped logger stored in ctx, or the default one.
func Logger(ctx context.Context) *slog.Logger {
	if reqCtx, ok := FromContext(ctx); ok {
		return reqCtx.With()
	}
	return slog.Default()
}

// Middleware tags each request with an ID, logs it when done and records
// it in metrics. metrics may be nil.
func Middleware(logger *slog.Logger, metrics *HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqCtx := NewRequestContext(logger, req.Header.Get(HeaderRequestID), req.Method, c.Path())
			c.SetRequest(req.WithContext(WithRequestContext(req.Context(), reqCtx)))
			c.Response().Header().Set(HeaderRequestID, reqCtx.RequestID)

			if err := next(c); err != nil {
				// Let the error handler write the response so the status is known.
				c.Error(err)
			}

			status := c.Response().Status
			duration := reqCtx.Duration()
			metrics.Observe(reqCtx.Method, reqCtx.Route, status, duration)

			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			}
			reqCtx.With().LogAttrs(req.Context(), level, "http request",
				slog.Int(LogFieldStatus, status),
				slog.Int64(LogFieldDuration, duration.Milliseconds()),
			)
			return nil
		}
	}
}
