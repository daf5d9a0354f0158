package httpserver

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/anchorkeep/internal/adapter/metrics"
	"github.com/pscheid92/anchorkeep/internal/anchor"
	"github.com/pscheid92/anchorkeep/internal/domain"
	"github.com/pscheid92/anchorkeep/internal/page"
	"github.com/pscheid92/anchorkeep/internal/platform/config"
)

// --- Mock implementations ---

type mockAnchorService struct {
	rememberFn func(ctx context.Context, sessionID uuid.UUID, raw string) (domain.Anchor, error)
	recallFn   func(ctx context.Context, sessionID uuid.UUID) (domain.Anchor, bool, error)
}

func (m *mockAnchorService) Remember(ctx context.Context, sessionID uuid.UUID, raw string) (domain.Anchor, error) {
	if m.rememberFn != nil {
		return m.rememberFn(ctx, sessionID, raw)
	}
	return domain.NormalizeAnchor(raw), nil
}

func (m *mockAnchorService) Recall(ctx context.Context, sessionID uuid.UUID) (domain.Anchor, bool, error) {
	if m.recallFn != nil {
		return m.recallFn(ctx, sessionID)
	}
	return "", false, nil
}

// --- Server helpers ---

func newTestServer(t *testing.T, anchors anchorService, opts ...func(*Server)) *Server {
	t.Helper()

	tmpl, err := parseTemplates()
	require.NoError(t, err)

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	srv := &Server{
		echo: echo.New(),
		config: &config.Config{
			SessionMaxAge:   time.Hour,
			AnchorRateLimit: 1000,
			AnchorRateBurst: 1000,
		},
		anchors:      anchors,
		sessionStore: store,
		templates:    tmpl,
		startTime:    time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withRateLimit(ratePerSecond float64, burst int) func(*Server) {
	return func(s *Server) {
		s.config.AnchorRateLimit = ratePerSecond
		s.config.AnchorRateBurst = burst
	}
}

func withRegistry(reg *prometheus.Registry) func(*Server) {
	return func(s *Server) {
		s.httpMetrics = metrics.NewHTTPMetrics(reg)
		s.metricsHandler = metrics.Handler(reg)
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}

// --- Browser helpers ---

// browser is one tab: a cookie jar, session storage and the last visited URL
// (sent as the Referer of the next navigation).
type browser struct {
	t       *testing.T
	baseURL string
	client  *http.Client
	storage *page.Storage
	current string
}

func newBrowser(t *testing.T, srv *Server) *browser {
	t.Helper()
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)
	return newBrowserAt(t, ts.URL)
}

func newBrowserAt(t *testing.T, baseURL string) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:       t,
		baseURL: baseURL,
		client:  &http.Client{Jar: jar, Timeout: 5 * time.Second},
		storage: page.NewStorage(),
	}
}

func (b *browser) open(path string) *page.Page {
	b.t.Helper()

	req, err := http.NewRequest(http.MethodGet, b.baseURL+path, nil)
	require.NoError(b.t, err)
	if b.current != "" {
		req.Header.Set("Referer", b.current)
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(b.t, http.StatusOK, resp.StatusCode)

	p, err := page.Load(b.baseURL+path, resp.Body, b.storage, b.current)
	require.NoError(b.t, err)
	b.current = p.Href()
	return p
}

func (b *browser) anchorClient(p *page.Page) *anchor.Client {
	b.t.Helper()
	endpoint, err := p.Resolve(p.Meta("anchor-url"))
	require.NoError(b.t, err)
	return anchor.NewClient(endpoint, p.Meta("csrf-token"), anchor.WithHTTPClient(b.client))
}

// postAnchor sends raw to /anchor with the page's token unless token overrides it.
func (b *browser) postAnchor(p *page.Page, raw string, token *string) *http.Response {
	b.t.Helper()

	req, err := http.NewRequest(http.MethodPost, b.baseURL+"/anchor", strings.NewReader(raw))
	require.NoError(b.t, err)
	req.Header.Set(echo.HeaderContentType, anchor.ContentTypeText)
	if token == nil {
		req.Header.Set(anchor.HeaderCSRFToken, p.Meta("csrf-token"))
	} else if *token != "" {
		req.Header.Set(anchor.HeaderCSRFToken, *token)
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
