package domain

import (
	"context"

	"github.com/google/uuid"
)

// AnchorStore persists at most one anchor per browser session.
type AnchorStore interface {
	// Save overwrites the session's anchor.
	Save(ctx context.Context, sessionID uuid.UUID, anchor Anchor) error
	// Load returns the session's anchor or ErrAnchorNotFound. It does not delete it.
	Load(ctx context.Context, sessionID uuid.UUID) (Anchor, error)
	// Take returns the session's anchor and deletes it atomically.
	Take(ctx context.Context, sessionID uuid.UUID) (Anchor, error)
	Ping(ctx context.Context) error
}
