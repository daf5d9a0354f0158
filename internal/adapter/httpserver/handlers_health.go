package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/anchorkeep/internal/platform/version"
)

// HealthCheck is a named dependency check, e.g. a ping of the anchor store.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthReport struct {
	Status      string   `json:"status"`
	Passed      []string `json:"passed"`
	FailedCheck string   `json:"failed_check,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.checkHealth(2*time.Second))
	s.echo.GET("/health/ready", s.checkHealth(5*time.Second))
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/version", s.handleVersion)
}

// checkHealth runs the checks in order and stops at the first failure, so a
// store that is down answers 503 before later checks spend their timeout.
func (s *Server) checkHealth(timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		report := healthReport{Status: "ready", Passed: []string{}}
		code := http.StatusOK
		for _, hc := range s.healthChecks {
			if err := hc.Check(ctx); err != nil {
				report.Status, report.FailedCheck, report.Error = "unhealthy", hc.Name, err.Error()
				code = http.StatusServiceUnavailable
				break
			}
			report.Passed = append(report.Passed, hc.Name)
		}

		if err := c.JSON(code, report); err != nil {
			return fmt.Errorf("failed to write health response: %w", err)
		}
		return nil
	}
}

// handleLiveness never touches the anchor store.
func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}
