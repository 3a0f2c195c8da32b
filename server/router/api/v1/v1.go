package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/eventdesk/internal/profile"
	"github.com/hrygo/eventdesk/server/auth"
	apierrors "github.com/hrygo/eventdesk/server/internal/errors"
	"github.com/hrygo/eventdesk/server/internal/observability"
	"github.com/hrygo/eventdesk/server/markdown"
	"github.com/hrygo/eventdesk/server/middleware"
	"github.com/hrygo/eventdesk/server/stats"
	"github.com/hrygo/eventdesk/store"
	"github.com/hrygo/eventdesk/store/cache"
)

type APIV1Service struct {
	Profile         *profile.Profile
	Store           *store.Store
	Cache           *cache.Store
	MarkdownService *markdown.Service
	StatsCollector  *stats.Collector
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, cache *cache.Store) *APIV1Service {
	return &APIV1Service{
		Profile:         profile,
		Store:           store,
		Cache:           cache,
		MarkdownService: markdown.NewService(cache),
		StatsCollector:  stats.NewCollector(store, cache),
	}
}

// RegisterRoutes mounts the API under /api/v1. Write routes need an admin
// token; the contact form is rate limited per client IP.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo, authenticator *auth.Authenticator, limiter *middleware.RateLimiter) {
	g := e.Group("/api/v1", authenticator.Middleware())

	g.GET("/events", s.ListEvents)
	g.GET("/events/:uid", s.GetEvent)
	g.POST("/events", s.CreateEvent, auth.RequireAdmin)
	g.PATCH("/events/:uid", s.UpdateEvent, auth.RequireAdmin)
	g.DELETE("/events/:uid", s.DeleteEvent, auth.RequireAdmin)

	g.GET("/clients", s.ListClients)
	g.GET("/clients/:uid", s.GetClient)
	g.POST("/clients", s.CreateClient, auth.RequireAdmin)
	g.DELETE("/clients/:uid", s.DeleteClient, auth.RequireAdmin)

	g.POST("/contact", s.CreateContactRequest, limiter.Middleware())
	g.GET("/contact", s.ListContactRequests, auth.RequireAdmin)

	g.GET("/settings/:name", s.GetSetting)
	g.PUT("/settings/:name", s.UpsertSetting, auth.RequireAdmin)

	g.GET("/stats", s.GetSiteStats, auth.RequireAdmin)
	g.GET("/cache/stats", s.GetCacheStats, auth.RequireAdmin)
	g.DELETE("/cache", s.InvalidateCache, auth.RequireAdmin)
}

// HTTPErrorHandler renders every failed request as an APIError body.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *apierrors.APIError
	var httpErr *echo.HTTPError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus()
	case errors.As(err, &httpErr):
		apiErr = &apierrors.APIError{Code: codeForStatus(httpErr.Code), Message: fmt.Sprint(httpErr.Message)}
		status = httpErr.Code
	default:
		apiErr = apierrors.Internal(err)
	}
	if status >= http.StatusInternalServerError {
		observability.Logger(c.Request().Context()).Error("request failed", slog.String("error", err.Error()))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, apiErr)
	}
	if err != nil {
		slog.Warn("failed to write error response", slog.String("error", err.Error()))
	}
}

func codeForStatus(status int) apierrors.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return apierrors.ErrCodeNotFound
	case status == http.StatusUnauthorized:
		return apierrors.ErrCodeUnauthorized
	case status == http.StatusTooManyRequests:
		return apierrors.ErrCodeRateLimitExceeded
	case status < http.StatusInternalServerError:
		return apierrors.ErrCodeInvalidArgument
	default:
		return apierrors.ErrCodeInternal
	}
}

// storeError maps store failures to API errors.
func storeError(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apierrors.NotFound(what + " not found")
	}
	return apierrors.Internal(err)
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "invalid request body")
	}
	return nil
}

func queryInt64(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apierrors.InvalidArgument(fmt.Sprintf("%s must be an integer", name))
	}
	return &v, nil
}

// queryLimit parses the limit parameter, capped at maxLimit.
func queryLimit(c echo.Context, maxLimit int) (*int, error) {
	v, err := queryInt64(c, "limit")
	if err != nil || v == nil {
		return nil, err
	}
	if *v <= 0 || *v > int64(maxLimit) {
		return nil, apierrors.InvalidArgument(fmt.Sprintf("limit must be between 1 and %d", maxLimit))
	}
	limit := int(*v)
	return &limit, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
