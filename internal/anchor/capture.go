package anchor

import (
	"context"
	"sync"
	"time"

	"github.com/pscheid92/anchorkeep/internal/domain"
)

// Saver submits the current fragment when its trigger fires.
type Saver struct {
	client  *Client
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewSaver(client *Client) *Saver {
	return &Saver{client: client, timeout: defaultTimeout}
}

// Bind saves loc's fragment every time trigger is activated.
func (s *Saver) Bind(trigger domain.Trigger, loc domain.Location) {
	trigger.OnActivate(func() { s.Save(loc) })
}

// Save starts a detached write of loc's fragment, exactly as the location
// holds it, and reports whether a request was issued. Nothing is sent for an
// empty fragment. The write's result is discarded; the server normalizes.
func (s *Saver) Save(loc domain.Location) bool {
	fragment := loc.Fragment()
	if fragment == "" {
		return false
	}

	s.wg.Go(func() {
		// Not tied to any caller context: the page may be gone before this finishes.
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_ = s.client.Post(ctx, fragment)
	})
	return true
}

// Wait blocks until every write started so far has finished.
func (s *Saver) Wait() {
	s.wg.Wait()
}
