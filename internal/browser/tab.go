// Package browser drives the anchorkeep pages the way a single browser tab
// would: one cookie jar, one session storage and a current location that
// becomes the referrer of the next navigation.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/pscheid92/anchorkeep/internal/anchor"
	"github.com/pscheid92/anchorkeep/internal/history"
	"github.com/pscheid92/anchorkeep/internal/page"
)

const (
	defaultTimeout = 10 * time.Second

	metaCSRFToken = "csrf-token"
	metaAnchorURL = "anchor-url"
	defaultAnchor = "/anchor"
)

type Tab struct {
	client  *http.Client
	jar     http.CookieJar
	storage *page.Storage
	current string
}

func NewTab() (*Tab, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Tab{
		client:  &http.Client{Jar: jar, Timeout: defaultTimeout},
		jar:     jar,
		storage: page.NewStorage(),
	}, nil
}

// Current is the location of the last page opened, including any fragment
// set on it since.
func (t *Tab) Current() string { return t.current }

func (t *Tab) Storage() *page.Storage { return t.storage }

// Open navigates to rawURL. The fragment is kept on the loaded page but not
// sent to the server, and the page is pushed onto the back-link history.
func (t *Tab) Open(ctx context.Context, rawURL string) (*page.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if t.current != "" {
		req.Header.Set("Referer", t.current)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load %s: status %d", rawURL, resp.StatusCode)
	}

	p, err := page.Load(rawURL, resp.Body, t.storage, t.current)
	if err != nil {
		return nil, err
	}
	history.Visit(p)
	t.current = p.Href()
	return p, nil
}

// Track records where the page's location ended up, e.g. after a restore
// set its fragment.
func (t *Tab) Track(p *page.Page) { t.current = p.Href() }

// AnchorClient talks to the anchor endpoint the page advertises, with the
// page's CSRF token and this tab's cookies.
func (t *Tab) AnchorClient(p *page.Page) (*anchor.Client, error) {
	ref := p.Meta(metaAnchorURL)
	if ref == "" {
		ref = defaultAnchor
	}
	endpoint, err := p.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return anchor.NewClient(endpoint, p.Meta(metaCSRFToken), anchor.WithHTTPClient(t.client)), nil
}
