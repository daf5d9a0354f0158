package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/anchorkeep/internal/domain"
)

var _ domain.AnchorStore = (*AnchorStore)(nil)

// AnchorStore keeps one anchor per session under anchor:<session id>. Every
// save resets the key's expiry.
type AnchorStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewAnchorStore(rdb *goredis.Client, ttl time.Duration) *AnchorStore {
	return &AnchorStore{rdb: rdb, ttl: ttl}
}

func anchorKey(sessionID uuid.UUID) string {
	return "anchor:" + sessionID.String()
}

func (s *AnchorStore) Save(ctx context.Context, sessionID uuid.UUID, anchor domain.Anchor) error {
	if err := s.rdb.Set(ctx, anchorKey(sessionID), anchor.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

func (s *AnchorStore) Load(ctx context.Context, sessionID uuid.UUID) (domain.Anchor, error) {
	val, err := s.rdb.Get(ctx, anchorKey(sessionID)).Result()
	return toAnchor("GET", val, err)
}

// Take reads and deletes the anchor atomically (GETDEL, Redis >= 6.2).
func (s *AnchorStore) Take(ctx context.Context, sessionID uuid.UUID) (domain.Anchor, error) {
	val, err := s.rdb.GetDel(ctx, anchorKey(sessionID)).Result()
	return toAnchor("GETDEL", val, err)
}

func (s *AnchorStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func toAnchor(op, val string, err error) (domain.Anchor, error) {
	switch {
	case errors.Is(err, goredis.Nil):
		return "", domain.ErrAnchorNotFound
	case err != nil:
		return "", fmt.Errorf("redis %s failed: %w", op, err)
	}
	return domain.Anchor(val), nil
}
