package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/eventdesk/server/internal/errors"
)

// GetSiteStats returns the activity summary for the admin dashboard.
// GET /api/v1/stats
func (s *APIV1Service) GetSiteStats(c echo.Context) error {
	summary, err := s.StatsCollector.GetSummary(c.Request().Context())
	if err != nil {
		return apierrors.Internal(err)
	}
	return c.JSON(http.StatusOK, summary)
}
