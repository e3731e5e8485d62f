package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"todolist/internal/model"
)

// RoleSource resolves a user's role on a board. "" means not a participant.
type RoleSource interface {
	GetRole(ctx context.Context, boardID, userID uuid.UUID) (model.Role, error)
}

// noRole is stored for non-participants so repeated lookups by outsiders hit the cache too.
const noRole = "-"

// RoleCache is a read-through Redis cache in front of a RoleSource. A nil Redis client
// turns it into a pass-through.
type RoleCache struct {
	base  RoleSource
	redis *redis.Client
	ttl   time.Duration
}

func NewRoleCache(base RoleSource, client *redis.Client, ttl time.Duration) *RoleCache {
	if base == nil {
		panic("cache.NewRoleCache: base role source is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RoleCache{base: base, redis: client, ttl: ttl}
}

func (c *RoleCache) GetRole(ctx context.Context, boardID, userID uuid.UUID) (model.Role, error) {
	if role, ok := c.load(ctx, boardID, userID); ok {
		return role, nil
	}

	role, err := c.base.GetRole(ctx, boardID, userID)
	if err != nil {
		return "", err
	}

	c.store(ctx, boardID, userID, role)
	return role, nil
}

// Forget drops the cached role of one participant.
func (c *RoleCache) Forget(ctx context.Context, boardID, userID uuid.UUID) {
	if c.redis == nil {
		return
	}
	if err := c.redis.HDel(ctx, boardKey(boardID), userID.String()).Err(); err != nil {
		log.WithError(err).WithField("board_id", boardID).Warn("role cache: evict participant failed")
	}
}

func (c *RoleCache) load(ctx context.Context, boardID, userID uuid.UUID) (model.Role, bool) {
	if c.redis == nil {
		return "", false
	}
	val, err := c.redis.HGet(ctx, boardKey(boardID), userID.String()).Result()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).Debug("role cache: read failed, falling back to database")
		}
		return "", false
	}
	if val == noRole {
		return "", true
	}
	role := model.Role(val)
	if !role.Valid() {
		c.Forget(ctx, boardID, userID)
		return "", false
	}
	return role, true
}

func (c *RoleCache) store(ctx context.Context, boardID, userID uuid.UUID, role model.Role) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	val := string(role)
	if val == "" {
		val = noRole
	}
	key := boardKey(boardID)
	// The TTL starts with the first entry of the hash; later writes do not extend it.
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, userID.String(), val)
		pipe.ExpireNX(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		log.WithError(err).Debug("role cache: write failed")
	}
}

func boardKey(boardID uuid.UUID) string {
	return "todolist:board:" + boardID.String() + ":roles"
}
