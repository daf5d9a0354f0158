package app

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/anchorkeep/internal/adapter/metrics"
	"github.com/pscheid92/anchorkeep/internal/domain"
)

// Service remembers at most one anchor per browser session.
type Service struct {
	store       domain.AnchorStore
	mode        domain.RecallMode
	metrics     *metrics.AnchorMetrics
	recallGroup singleflight.Group
}

// NewService creates the application layer service. m may be nil.
func NewService(store domain.AnchorStore, mode domain.RecallMode, m *metrics.AnchorMetrics) *Service {
	if !mode.Valid() {
		mode = domain.RecallPeek
	}
	return &Service{store: store, mode: mode, metrics: m}
}

func (s *Service) Mode() domain.RecallMode { return s.mode }

// Remember normalizes and validates raw, then stores it for the session,
// replacing any previous anchor.
func (s *Service) Remember(ctx context.Context, sessionID uuid.UUID, raw string) (domain.Anchor, error) {
	anchor := domain.NormalizeAnchor(raw)
	if err := ValidateAnchor(anchor); err != nil {
		s.metrics.Saved("invalid")
		return "", err
	}

	if err := s.store.Save(ctx, sessionID, anchor); err != nil {
		s.metrics.Saved("error")
		return "", fmt.Errorf("failed to save anchor: %w", err)
	}

	s.metrics.Saved("ok")
	return anchor, nil
}

// Recall returns the session's anchor. In consume mode the anchor is gone
// afterwards; in peek mode concurrent recalls for one session share a
// single store read.
func (s *Service) Recall(ctx context.Context, sessionID uuid.UUID) (domain.Anchor, bool, error) {
	var (
		anchor domain.Anchor
		err    error
	)
	if s.mode == domain.RecallConsume {
		anchor, err = s.store.Take(ctx, sessionID)
	} else {
		var v any
		// The shared read outlives the caller that started it, so one
		// disconnecting client does not fail the others waiting on it.
		v, err, _ = s.recallGroup.Do(sessionID.String(), func() (any, error) {
			return s.store.Load(context.WithoutCancel(ctx), sessionID)
		})
		anchor, _ = v.(domain.Anchor)
	}

	switch {
	case errors.Is(err, domain.ErrAnchorNotFound):
		s.metrics.Recalled("miss")
		return "", false, nil
	case err != nil:
		s.metrics.Recalled("error")
		return "", false, fmt.Errorf("failed to load anchor: %w", err)
	}

	s.metrics.Recalled("hit")
	return anchor, true, nil
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ValidateAnchor accepts what a browser can put in a fragment that points at
// an element id: printable, no whitespace, no '#', bounded length. Trailing
// "&key=value" data is allowed.
func ValidateAnchor(a domain.Anchor) error {
	s := a.String()
	switch {
	case s == "":
		return fmt.Errorf("%w: empty", domain.ErrInvalidAnchor)
	case len(s) > domain.MaxAnchorLength:
		return fmt.Errorf("%w: longer than %d bytes", domain.ErrInvalidAnchor, domain.MaxAnchorLength)
	case !utf8.ValidString(s):
		return fmt.Errorf("%w: not valid UTF-8", domain.ErrInvalidAnchor)
	case domain.FragmentID(s) == "":
		return fmt.Errorf("%w: missing element id", domain.ErrInvalidAnchor)
	}
	for _, r := range s {
		if r == '#' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: contains %q", domain.ErrInvalidAnchor, r)
		}
	}
	return nil
}
