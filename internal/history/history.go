// Package history keeps a tab-scoped stack of visited paths so a "Back" link
// can return to the previous page of the application, not the previous
// browser entry.
package history

import (
	"net/url"
	"strings"

	"github.com/pscheid92/anchorkeep/internal/domain"
)

// StorageKey is where the stack lives in session storage.
const StorageKey = "historyStack"

// Page is what the back link needs from the current page.
type Page interface {
	domain.SessionStorage
	Href() string
	Referrer() string
}

// Visit records the page's path (with query) on top of the stack. Reloading
// the same page does not grow the stack.
func Visit(p Page) {
	path, ok := pathOf(p.Href())
	if !ok {
		return
	}
	stack := p.StoredList(StorageKey)
	if n := len(stack); n > 0 && stack[n-1] == path {
		return
	}
	p.SetStoredList(StorageKey, append(stack, path))
}

// Back pops the current page and returns the absolute URL of the previous
// one. It only navigates when the user arrived from the same host and there
// is somewhere to go back to.
func Back(p Page) (string, bool) {
	u, err := url.Parse(p.Href())
	if err != nil {
		return "", false
	}
	ref := p.Referrer()
	if ref == "" || !strings.Contains(ref, u.Host) {
		return "", false
	}

	stack := p.StoredList(StorageKey)
	if len(stack) <= 1 {
		return "", false
	}

	stack = stack[:len(stack)-1]
	previous := stack[len(stack)-1]
	p.SetStoredList(StorageKey, stack)

	return u.Scheme + "://" + u.Host + previous, true
}

func pathOf(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path, true
}
