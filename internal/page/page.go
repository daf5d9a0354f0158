package page

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pscheid92/anchorkeep/internal/domain"
)

var _ domain.PageContext = (*Page)(nil)

// Page is a parsed document plus the mutable location it was loaded from.
type Page struct {
	referrer string
	storage  *Storage

	elements map[string]*Element
	buttons  []*Element
	meta     map[string]string

	mu       sync.RWMutex
	base     string
	fragment string
}

// Load parses body as the document served at rawURL. Pages loaded into the
// same tab share storage.
func Load(rawURL string, body io.Reader, storage *Storage, referrer string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("page URL must be absolute: %q", rawURL)
	}

	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	if storage == nil {
		storage = NewStorage()
	}

	p := &Page{
		referrer: referrer,
		storage:  storage,
		elements: make(map[string]*Element),
		meta:     make(map[string]string),
	}
	p.base, p.fragment, _ = strings.Cut(rawURL, "#")
	p.index(doc)
	return p, nil
}

func (p *Page) index(n *html.Node) {
	if n.Type == html.ElementNode {
		attrs := make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
		el := newElement(n.Data, attrs, textContent(n))

		// First id wins, as with getElementById.
		if id := attrs["id"]; id != "" {
			if _, dup := p.elements[id]; !dup {
				p.elements[id] = el
			}
		}
		if n.DataAtom == atom.A && attrs["role"] == "button" {
			p.buttons = append(p.buttons, el)
		}
		if n.DataAtom == atom.Meta && attrs["name"] != "" {
			p.meta[attrs["name"]] = attrs["content"]
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.index(c)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// --- domain.Location ---

func (p *Page) Href() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.fragment == "" {
		return p.base
	}
	return p.base + "#" + p.fragment
}

func (p *Page) Fragment() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fragment
}

func (p *Page) SetFragment(fragment string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fragment = strings.TrimPrefix(fragment, "#")
}

func (p *Page) AppendToURL(suffix string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	href := p.base
	if p.fragment != "" {
		href += "#" + p.fragment
	}
	p.base, p.fragment, _ = strings.Cut(href+suffix, "#")
}

// --- domain.Document ---

func (p *Page) HasElement(id string) bool {
	_, ok := p.elements[id]
	return ok
}

// --- domain.SessionStorage ---

func (p *Page) StoredList(key string) []string {
	return p.storage.list(key)
}

func (p *Page) SetStoredList(key string, list []string) {
	p.storage.setList(key, list)
}

// Element returns the first element with the given id, or nil.
func (p *Page) Element(id string) *Element {
	return p.elements[id]
}

// Target is the element the fragment currently points at, i.e. what the
// browser has scrolled to and focused. Trailing "&..." data is ignored.
func (p *Page) Target() *Element {
	id := domain.FragmentID(p.Fragment())
	if id == "" {
		return nil
	}
	return p.elements[id]
}

// Meta returns the content of <meta name=name>.
func (p *Page) Meta(name string) string {
	return p.meta[name]
}

func (p *Page) Referrer() string { return p.referrer }

func (p *Page) Storage() *Storage { return p.storage }

// URL returns the current location parsed. Suffixes appended by
// AppendToURL can make it unparseable.
func (p *Page) URL() (*url.URL, error) {
	u, err := url.Parse(p.Href())
	if err != nil {
		return nil, fmt.Errorf("invalid page location: %w", err)
	}
	return u, nil
}

// Resolve turns a path or URL found on the page into an absolute URL.
func (p *Page) Resolve(ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	u, err := p.URL()
	if err != nil {
		return "", err
	}
	return u.ResolveReference(r).String(), nil
}

// HardenButtons prepares every a[role=button] for keyboard users: links
// are not draggable and the space key activates them. It returns the number
// of elements touched.
func (p *Page) HardenButtons() int {
	for _, b := range p.buttons {
		b.SetAttr("draggable", "false")
		b.OnKeyDown(func(key string) {
			if key == KeySpace {
				b.Click()
			}
		})
	}
	return len(p.buttons)
}
