// Package server wires the HTTP surface of eventdesk.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/eventdesk/internal/profile"
	"github.com/hrygo/eventdesk/server/auth"
	"github.com/hrygo/eventdesk/server/internal/observability"
	"github.com/hrygo/eventdesk/server/middleware"
	apiv1 "github.com/hrygo/eventdesk/server/router/api/v1"
	"github.com/hrygo/eventdesk/store"
	"github.com/hrygo/eventdesk/store/cache"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Cache   *cache.Store

	echoServer *echo.Echo
}

// NewServer builds the echo instance. Collectors are registered with
// registry, which is also served on /metrics.
func NewServer(profile *profile.Profile, store *store.Store, cache *cache.Store, registry *prometheus.Registry) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
		Cache:   cache,
	}

	httpMetrics, err := observability.NewHTTPMetrics(registry)
	if err != nil {
		return nil, errors.Wrap(err, "failed to register http metrics")
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.IPExtractor = echo.ExtractIPFromXFFHeader()
	echoServer.HTTPErrorHandler = apiv1.HTTPErrorHandler
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(observability.Middleware(slog.Default(), httpMetrics))
	s.echoServer = echoServer

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	echoServer.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})))

	apiV1Service := apiv1.NewAPIV1Service(profile, store, cache)
	apiV1Service.RegisterRoutes(echoServer, auth.NewAuthenticator(profile.Secret), middleware.NewRateLimiter(profile.ContactRateLimit))

	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	s.echoServer.Listener = listener

	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", slog.String("error", err.Error()))
		}
	}()
	slog.Info("server started", slog.String("address", address))
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones, then
// closes the store. The cache is closed by its owner.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}
	slog.Info("server stopped properly")
}
