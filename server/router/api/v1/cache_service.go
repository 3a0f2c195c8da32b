package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/eventdesk/server/internal/errors"
	"github.com/hrygo/eventdesk/server/internal/observability"
)

type InvalidateCacheResponse struct {
	Removed int `json:"removed"`
}

// GetCacheStats returns a snapshot of the cache.
// GET /api/v1/cache/stats
func (s *APIV1Service) GetCacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Cache.Stats())
}

// InvalidateCache drops the keys matching the pattern regular expression,
// or every key when pattern is empty.
// DELETE /api/v1/cache?pattern=
func (s *APIV1Service) InvalidateCache(c echo.Context) error {
	pattern := c.QueryParam("pattern")

	var removed int
	if pattern == "" {
		removed = s.Cache.Len()
		s.Cache.Clear()
	} else {
		var err error
		removed, err = s.Cache.InvalidatePattern(pattern)
		if err != nil {
			return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "invalid pattern")
		}
	}

	observability.Logger(c.Request().Context()).Info("cache invalidated",
		slog.String("pattern", pattern), slog.Int("removed", removed))
	return c.JSON(http.StatusOK, &InvalidateCacheResponse{Removed: removed})
}
