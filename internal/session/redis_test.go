package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovtiti-ussd/internal/domain"
)

func setupRedisStore(t *testing.T, opts ...RedisOption) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := NewRedisStore(client, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRedisStore_NilClient(t *testing.T) {
	_, err := NewRedisStore(nil)
	require.Error(t, err)
}

func TestRedisStore_GetOrCreateAndSave(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	sess, err := store.GetOrCreate(ctx, "at-123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleNone, sess.Role)
	assert.Empty(t, sess.KYCData)
	assert.True(t, mr.Exists("lovtiti:ussd:session:at-123"))

	sess.Role = domain.RoleFarmer
	sess.Step = 2
	sess.KYCData[domain.FieldFullName] = "John Doe"
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.GetOrCreate(ctx, "at-123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFarmer, loaded.Role)
	assert.Equal(t, 2, loaded.Step)
	assert.Equal(t, "John Doe", loaded.KYCData[domain.FieldFullName])
}

func TestRedisStore_TTLRefreshedOnSave(t *testing.T) {
	store, mr := setupRedisStore(t, WithTTL(time.Minute), WithPrefix("test"))
	ctx := context.Background()

	sess, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	key := "test:session:s1"
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(40 * time.Second)
	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(61 * time.Second)
	assert.False(t, mr.Exists(key))

	again, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleNone, again.Role)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := setupRedisStore(t)
	require.NoError(t, mr.Set("lovtiti:ussd:session:bad", "{not json"))

	_, err := store.GetOrCreate(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestRedisStore_InvalidInput(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, store.Save(ctx, nil), ErrNilState)
	assert.ErrorIs(t, store.Save(ctx, &domain.Session{}), ErrInvalidID)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	store, err := NewRedisStore(client)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetOrCreate(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setnx")
}
