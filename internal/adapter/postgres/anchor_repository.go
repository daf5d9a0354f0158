package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/anchorkeep/internal/domain"
)

var _ domain.AnchorStore = (*AnchorRepo)(nil)

// AnchorRepo stores anchors in session_anchors. Rows older than the TTL are
// invisible to reads and removed by DeleteExpired.
type AnchorRepo struct {
	pool  *pgxpool.Pool
	ttl   time.Duration
	clock clockwork.Clock
}

func NewAnchorRepo(pool *pgxpool.Pool, ttl time.Duration, clock clockwork.Clock) *AnchorRepo {
	return &AnchorRepo{pool: pool, ttl: ttl, clock: clock}
}

const upsertAnchor = `
INSERT INTO session_anchors (session_id, anchor, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (session_id) DO UPDATE
SET anchor = EXCLUDED.anchor, updated_at = EXCLUDED.updated_at`

func (r *AnchorRepo) Save(ctx context.Context, sessionID uuid.UUID, anchor domain.Anchor) error {
	if _, err := r.pool.Exec(ctx, upsertAnchor, sessionID, anchor.String(), r.clock.Now()); err != nil {
		return fmt.Errorf("failed to upsert anchor: %w", err)
	}
	return nil
}

const selectAnchor = `
SELECT anchor FROM session_anchors
WHERE session_id = $1 AND updated_at > $2`

func (r *AnchorRepo) Load(ctx context.Context, sessionID uuid.UUID) (domain.Anchor, error) {
	return r.queryAnchor(ctx, selectAnchor, sessionID)
}

const deleteAnchor = `
DELETE FROM session_anchors
WHERE session_id = $1 AND updated_at > $2
RETURNING anchor`

func (r *AnchorRepo) Take(ctx context.Context, sessionID uuid.UUID) (domain.Anchor, error) {
	return r.queryAnchor(ctx, deleteAnchor, sessionID)
}

func (r *AnchorRepo) queryAnchor(ctx context.Context, sql string, sessionID uuid.UUID) (domain.Anchor, error) {
	var anchor string
	err := r.pool.QueryRow(ctx, sql, sessionID, r.cutoff()).Scan(&anchor)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", domain.ErrAnchorNotFound
	case err != nil:
		return "", fmt.Errorf("failed to query anchor: %w", err)
	}
	return domain.Anchor(anchor), nil
}

// DeleteExpired removes rows past the TTL and reports how many were removed.
func (r *AnchorRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM session_anchors WHERE updated_at <= $1`, r.cutoff())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired anchors: %w", err)
	}
	return tag.RowsAffected(), nil
}

// StartPurgeTimer runs DeleteExpired every interval until the returned stop
// function is called.
func (r *AnchorRepo) StartPurgeTimer(interval time.Duration) func() {
	ticker := r.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				n, err := r.DeleteExpired(ctx)
				cancel()
				if err != nil {
					slog.Warn("Failed to purge expired anchors", "error", err)
				} else if n > 0 {
					slog.Debug("Purged expired anchors", "count", n)
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (r *AnchorRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *AnchorRepo) cutoff() time.Time {
	return r.clock.Now().Add(-r.ttl)
}
