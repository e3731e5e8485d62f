package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist/internal/model"
)

type stubSource struct {
	calls int
	role  model.Role
	err   error
}

func (s *stubSource) GetRole(ctx context.Context, boardID, userID uuid.UUID) (model.Role, error) {
	s.calls++
	return s.role, s.err
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRoleCache_MissThenHit(t *testing.T) {
	mr, client := newRedis(t)
	src := &stubSource{role: model.RoleWriter}
	c := NewRoleCache(src, client, time.Minute)
	ctx := context.Background()
	boardID, userID := uuid.New(), uuid.New()

	role, err := c.GetRole(ctx, boardID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleWriter, role)

	role, err = c.GetRole(ctx, boardID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleWriter, role)
	assert.Equal(t, 1, src.calls)

	ttl := mr.TTL(boardKey(boardID))
	assert.True(t, ttl > 0 && ttl <= time.Minute, "unexpected TTL %v", ttl)
}

// новые участники в том же хеше не должны продлевать жизнь старым записям
func TestRoleCache_LaterWritesKeepBoardTTL(t *testing.T) {
	mr, client := newRedis(t)
	src := &stubSource{role: model.RoleReader}
	c := NewRoleCache(src, client, time.Minute)
	ctx := context.Background()
	boardID, first, second := uuid.New(), uuid.New(), uuid.New()

	_, err := c.GetRole(ctx, boardID, first)
	require.NoError(t, err)

	mr.FastForward(40 * time.Second)
	_, err = c.GetRole(ctx, boardID, second)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)

	ttl := mr.TTL(boardKey(boardID))
	assert.True(t, ttl > 0 && ttl <= 20*time.Second, "TTL was extended to %v", ttl)

	mr.FastForward(21 * time.Second)
	assert.False(t, mr.Exists(boardKey(boardID)))

	_, err = c.GetRole(ctx, boardID, first)
	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestRoleCache_CachesNonParticipant(t *testing.T) {
	_, client := newRedis(t)
	src := &stubSource{}
	c := NewRoleCache(src, client, time.Minute)
	ctx := context.Background()
	boardID, userID := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		role, err := c.GetRole(ctx, boardID, userID)
		require.NoError(t, err)
		assert.Equal(t, model.Role(""), role)
	}
	assert.Equal(t, 1, src.calls)
}

func TestRoleCache_ForgetForcesReload(t *testing.T) {
	_, client := newRedis(t)
	src := &stubSource{role: model.RoleReader}
	c := NewRoleCache(src, client, time.Minute)
	ctx := context.Background()
	boardID, userID := uuid.New(), uuid.New()

	_, err := c.GetRole(ctx, boardID, userID)
	require.NoError(t, err)

	src.role = model.RoleWriter
	c.Forget(ctx, boardID, userID)

	role, err := c.GetRole(ctx, boardID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleWriter, role)
	assert.Equal(t, 2, src.calls)
}

func TestRoleCache_BackendErrorNotCached(t *testing.T) {
	_, client := newRedis(t)
	src := &stubSource{err: errors.New("db down")}
	c := NewRoleCache(src, client, time.Minute)
	ctx := context.Background()
	boardID, userID := uuid.New(), uuid.New()

	_, err := c.GetRole(ctx, boardID, userID)
	assert.Error(t, err)

	src.err = nil
	src.role = model.RoleOwner
	role, err := c.GetRole(ctx, boardID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, role)
	assert.Equal(t, 2, src.calls)
}

func TestRoleCache_RedisDownFallsBack(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	src := &stubSource{role: model.RoleReader}
	c := NewRoleCache(src, client, time.Minute)

	role, err := c.GetRole(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.RoleReader, role)
}

func TestRoleCache_NilClientPassesThrough(t *testing.T) {
	src := &stubSource{role: model.RoleOwner}
	c := NewRoleCache(src, nil, time.Minute)
	ctx := context.Background()
	boardID, userID := uuid.New(), uuid.New()

	_, _ = c.GetRole(ctx, boardID, userID)
	_, _ = c.GetRole(ctx, boardID, userID)
	c.Forget(ctx, boardID, userID)

	assert.Equal(t, 2, src.calls)
}
