package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/broilr/pkg/adapters/redis"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestIdentityStore_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunIdentityStoreContract(t, redis.NewFromClient(client))
}

func TestIdentityStore_KeyLayout(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:id:"), redis.WithProfile("kitchen"))

	require.NoError(t, store.Save(context.Background(), "julia"))
	got, err := mr.Get("test:id:kitchen")
	require.NoError(t, err)
	assert.Equal(t, "julia", got)
}

func TestIdentityStore_ProfilesAreIsolated(t *testing.T) {
	_, client := setup(t)
	a := redis.NewFromClient(client, redis.WithProfile("a"))
	b := redis.NewFromClient(client, redis.WithProfile("b"))

	require.NoError(t, a.Save(context.Background(), "julia"))
	_, err := b.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestIdentityStore_TTL(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Hour))

	require.NoError(t, store.Save(context.Background(), "julia"))
	mr.FastForward(2 * time.Hour)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}
