package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/broilr"
	"github.com/aretw0/broilr/pkg/adapters/memory"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func factory() session.Factory {
	backend := memory.NewBackend()
	return func(ctx context.Context, username string) (*broilr.Conversation, error) {
		return broilr.New(backend, username)
	}
}

func TestManager_CreateGetDelete(t *testing.T) {
	m := session.NewManager(factory())
	ctx := context.Background()

	id, conv, err := m.Create(ctx, "julia")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Same(t, conv, got)
	assert.Equal(t, []string{id}, m.List())

	m.Delete(id)
	_, err = m.Get(id)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManager_FactoryErrors(t *testing.T) {
	m := session.NewManager(factory())
	_, _, err := m.Create(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	assert.Zero(t, m.Len())
}

func TestManager_SweepIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := session.NewManager(factory(), session.WithIdleTTL(time.Minute), session.WithClock(clock))
	ctx := context.Background()

	stale, _, err := m.Create(ctx, "julia")
	require.NoError(t, err)
	now = now.Add(50 * time.Second)
	fresh, _, err := m.Create(ctx, "gordon")
	require.NoError(t, err)

	now = now.Add(20 * time.Second)
	assert.Equal(t, 1, m.Sweep())

	_, err = m.Get(stale)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = m.Get(fresh)
	assert.NoError(t, err)
}

func TestManager_ConcurrentCreate(t *testing.T) {
	m := session.NewManager(factory())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.Create(context.Background(), "julia")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, m.Len())
}
