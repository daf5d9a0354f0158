package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/anchorkeep/internal/adapter/metrics"
	"github.com/pscheid92/anchorkeep/internal/domain"
	"github.com/pscheid92/anchorkeep/internal/platform/config"
	"github.com/pscheid92/anchorkeep/web"
)

type anchorService interface {
	Remember(ctx context.Context, sessionID uuid.UUID, raw string) (domain.Anchor, error)
	Recall(ctx context.Context, sessionID uuid.UUID) (domain.Anchor, bool, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	anchors anchorService

	templates *template.Template

	sessionStore   *sessions.CookieStore
	limiterStore   middleware.RateLimiterStore
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	healthChecks   []HealthCheck
	startTime      time.Time
}

// NewServer wires the routes. reg may be nil, in which case neither HTTP
// metrics nor /metrics are served.
func NewServer(cfg *config.Config, anchors anchorService, reg *prometheus.Registry, healthChecks []HealthCheck, opts ...Option) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		anchors:      anchors,
		sessionStore: setupSessionStore(cfg),
		templates:    templates,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}
	if reg != nil {
		srv.httpMetrics = metrics.NewHTTPMetrics(reg)
		srv.metricsHandler = metrics.Handler(reg)
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv, nil
}

type Option func(*Server)

// WithRateLimiterStore replaces the per-process anchor rate limiter, e.g. with
// one shared by all instances.
func WithRateLimiterStore(store middleware.RateLimiterStore) Option {
	return func(s *Server) {
		s.limiterStore = store
	}
}

func parseTemplates() (*template.Template, error) {
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Handler exposes the routed server, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func (s *Server) renderTemplate(c echo.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(http.StatusOK, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
