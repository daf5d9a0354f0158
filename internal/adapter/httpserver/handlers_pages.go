package httpserver

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apperrors "github.com/pscheid92/anchorkeep/internal/platform/errors"
	"github.com/pscheid92/anchorkeep/internal/search"
)

const defaultCaseID = "A-0001"

type caseSection struct {
	ID    string
	Title string
}

// caseSections are the anchor targets of a case page. Tabs use the tab_
// prefix so a restored fragment can select them.
var caseSections = []caseSection{
	{ID: "summary", Title: "Summary"},
	{ID: "section-1", Title: "Applicant"},
	{ID: "section-2", Title: "Premises"},
	{ID: "section-3", Title: "Conditions"},
	{ID: "tab_documents", Title: "Documents"},
	{ID: "tab_notes", Title: "Notes"},
}

type casePageData struct {
	CSRFToken string
	AnchorURL string
	CaseID    string
	Sections  []caseSection
}

type searchPageData struct {
	CSRFToken        string
	Query            search.Query
	Keywords         []string
	ApplicationTypes []string
	Statuses         []string
	CanAdd           bool
}

func (s *Server) registerPageRoutes(csrfMiddleware echo.MiddlewareFunc) {
	g := s.echo.Group("", s.sessionMiddleware, csrfMiddleware)
	g.GET("/", s.handleCase)
	g.GET("/cases/:id", s.handleCase)
	g.GET("/search", s.handleSearch)
	g.POST("/search", s.handleSearch)
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

func (s *Server) handleCase(c echo.Context) error {
	caseID := c.Param("id")
	if caseID == "" {
		caseID = defaultCaseID
	}

	return s.renderTemplate(c, "case.html", casePageData{
		CSRFToken: csrfToken(c),
		AnchorURL: "/anchor",
		CaseID:    caseID,
		Sections:  caseSections,
	})
}

// handleSearch renders the advanced search form. A POST carries the current
// keyword rows plus at most one edit: a new keyword or a row index to remove.
func (s *Server) handleSearch(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return apperrors.ValidationError("invalid form")
	}

	keywords := search.ParseKeywords(form["keywords"])
	if raw := form.Get("remove"); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("invalid keyword index").WithField("remove", raw)
		}
		keywords.Remove(index)
	}
	if kw := form.Get("new_keyword"); kw != "" {
		keywords.Add(kw)
	}

	query := search.NewQuery(keywords, form["application_type"], form["status"])
	return s.renderTemplate(c, "search.html", searchPageData{
		CSRFToken:        csrfToken(c),
		Query:            query,
		Keywords:         keywords.List(),
		ApplicationTypes: search.ApplicationTypes,
		Statuses:         search.Statuses,
		CanAdd:           keywords.Len() < search.MaxKeywords,
	})
}
