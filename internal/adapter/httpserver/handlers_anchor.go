package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/anchorkeep/internal/domain"
	apperrors "github.com/pscheid92/anchorkeep/internal/platform/errors"
)

// maxAnchorBody leaves room for a leading '#' and surrounding whitespace.
const maxAnchorBody = domain.MaxAnchorLength + 16

func (s *Server) registerAnchorRoutes(csrfMiddleware echo.MiddlewareFunc) {
	var limiter echo.MiddlewareFunc
	if s.limiterStore != nil {
		limiter = newRateLimiterWithStore(s.limiterStore, s.config.AnchorRateLimit)
	} else {
		limiter = newRateLimiter(s.config.AnchorRateLimit, s.config.AnchorRateBurst)
	}

	g := s.echo.Group("/anchor", limiter, s.sessionMiddleware, csrfMiddleware)
	g.POST("", s.handleSaveAnchor)
	g.GET("", s.handleGetAnchor)
}

// handleSaveAnchor stores the request body as the session's anchor.
func (s *Server) handleSaveAnchor(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAnchorBody+1))
	if err != nil {
		return apperrors.ValidationError("failed to read request body")
	}
	if len(body) > maxAnchorBody {
		return apperrors.ValidationError("anchor too long").WithField("bytes", len(body))
	}

	sid := sessionID(c)
	if _, err := s.anchors.Remember(c.Request().Context(), sid, string(body)); err != nil {
		if errors.Is(err, domain.ErrInvalidAnchor) {
			return apperrors.ValidationError("invalid anchor").WithField("reason", err.Error())
		}
		return apperrors.ExternalError("failed to save anchor", err).WithField("session_id", sid)
	}

	return c.NoContent(http.StatusNoContent)
}

// handleGetAnchor answers with the stored anchor as plain text, or an empty
// body when there is none.
func (s *Server) handleGetAnchor(c echo.Context) error {
	sid := sessionID(c)
	anchor, ok, err := s.anchors.Recall(c.Request().Context(), sid)
	if err != nil {
		return apperrors.ExternalError("failed to load anchor", err).WithField("session_id", sid)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	if !ok {
		anchor = ""
	}
	if err := c.String(http.StatusOK, anchor.String()); err != nil {
		return fmt.Errorf("failed to write anchor response: %w", err)
	}
	return nil
}
