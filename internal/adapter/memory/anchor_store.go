// Package memory implements a single-process anchor store. Anchors are lost
// on restart and are not shared between replicas.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/anchorkeep/internal/domain"
)

var _ domain.AnchorStore = (*AnchorStore)(nil)

type entry struct {
	anchor    domain.Anchor
	expiresAt time.Time
}

// AnchorStore keeps one anchor per session with a sliding TTL that is reset
// on every save.
type AnchorStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]entry
	ttl     time.Duration
	clock   clockwork.Clock
}

func NewAnchorStore(ttl time.Duration, clock clockwork.Clock) *AnchorStore {
	return &AnchorStore{
		entries: make(map[uuid.UUID]entry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (s *AnchorStore) Save(_ context.Context, sessionID uuid.UUID, anchor domain.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = entry{anchor: anchor, expiresAt: s.clock.Now().Add(s.ttl)}
	return nil
}

func (s *AnchorStore) Load(_ context.Context, sessionID uuid.UUID) (domain.Anchor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(sessionID)
}

func (s *AnchorStore) Take(_ context.Context, sessionID uuid.UUID) (domain.Anchor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	anchor, err := s.lookup(sessionID)
	delete(s.entries, sessionID)
	return anchor, err
}

// lookup must be called with mu held.
func (s *AnchorStore) lookup(sessionID uuid.UUID) (domain.Anchor, error) {
	e, ok := s.entries[sessionID]
	if !ok || !s.clock.Now().Before(e.expiresAt) {
		return "", domain.ErrAnchorNotFound
	}
	return e.anchor, nil
}

func (s *AnchorStore) Ping(context.Context) error { return nil }

func (s *AnchorStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartEvictionTimer periodically drops expired anchors.
// Returns a stop function that should be deferred.
func (s *AnchorStore) StartEvictionTimer(interval time.Duration) func() {
	ticker := s.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				if evicted := s.evictExpired(); evicted > 0 {
					slog.Debug("Evicted expired anchors", "count", evicted, "remaining", s.Len())
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (s *AnchorStore) evictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	evicted := 0
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}
