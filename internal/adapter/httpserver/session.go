package httpserver

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/pscheid92/anchorkeep/internal/platform/errors"
)

const (
	sessionName     = "anchorkeep-session"
	sessionKeyID    = "sid"
	contextKeyLocal = "sessionID"
)

// sessionMiddleware makes sure every request carries a browser session id,
// minting one on the first visit.
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		// Get returns a fresh session alongside the error when the cookie
		// cannot be decoded (e.g. after a secret rotation).
		sess, err := s.sessionStore.Get(req, sessionName)
		if err != nil {
			slog.DebugContext(req.Context(), "Discarding unreadable session cookie", "error", err)
		}

		raw, _ := sess.Values[sessionKeyID].(string)
		sid, err := uuid.Parse(raw)
		if err != nil {
			sid = uuid.New()
			sess.Values[sessionKeyID] = sid.String()
			if err := sess.Save(req, c.Response()); err != nil {
				return apperrors.InternalError("failed to save session", err)
			}
		}

		c.Set(contextKeyLocal, sid)
		return next(c)
	}
}

func sessionID(c echo.Context) uuid.UUID {
	sid, _ := c.Get(contextKeyLocal).(uuid.UUID)
	return sid
}
