package observability

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	reg := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	e := echo.New()
	e.Use(Middleware(logger, metrics))
	e.GET("/items/:id", func(c echo.Context) error {
		reqCtx, ok := FromContext(c.Request().Context())
		require.True(t, ok)
		return c.String(http.StatusOK, reqCtx.RequestID)
	})
	e.GET("/fail", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream")
	})

	t.Run("GeneratesRequestID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		id := rec.Header().Get(HeaderRequestID)
		assert.Len(t, id, 36)
		assert.Equal(t, id, rec.Body.String())
		assert.Contains(t, buf.String(), `"route":"/items/:id"`)
	})

	t.Run("KeepsIncomingRequestID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items/2", nil)
		req.Header.Set(HeaderRequestID, "abc")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, "abc", rec.Header().Get(HeaderRequestID))
	})

	t.Run("RecordsErrorStatus", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
	})

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, "/items/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, "/fail", "502")))
}

func TestNilMetrics(t *testing.T) {
	var m *HTTPMetrics
	assert.NotPanics(t, func() { m.Observe(http.MethodGet, "/", http.StatusOK, 0) })
}
