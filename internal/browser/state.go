package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pscheid92/anchorkeep/internal/page"
)

// State is what survives between two runs of a tab: the session cookies for
// the current origin, the session storage and the current location.
type State struct {
	Current string         `json:"current"`
	Cookies []*http.Cookie `json:"cookies,omitempty"`
	Storage *page.Storage  `json:"storage"`
}

func (t *Tab) State() State {
	s := State{Current: t.current, Storage: t.storage}
	if u, err := url.Parse(t.current); err == nil && u.IsAbs() {
		s.Cookies = t.jar.Cookies(u)
	}
	return s
}

// Restore replaces the tab's state. Cookies are scoped to the whole origin
// of s.Current.
func (t *Tab) Restore(s State) error {
	if s.Storage != nil {
		t.storage = s.Storage
	}
	t.current = s.Current
	if s.Current == "" || len(s.Cookies) == 0 {
		return nil
	}

	u, err := url.Parse(s.Current)
	if err != nil {
		return fmt.Errorf("invalid stored location: %w", err)
	}
	for _, c := range s.Cookies {
		c.Path = "/"
	}
	t.jar.SetCookies(&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}, s.Cookies)
	return nil
}

// LoadState reads a state file written by SaveState. A missing file leaves
// the tab fresh.
func (t *Tab) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode state %s: %w", path, err)
	}
	return t.Restore(s)
}

func (t *Tab) SaveState(path string) error {
	data, err := json.MarshalIndent(t.State(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}
