package ports

import (
	"context"
	"testing"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunIdentityStoreContract runs a suite of tests to verify that an IdentityStore
// implementation adheres to the defined interface contract.
func RunIdentityStoreContract(t *testing.T, store IdentityStore) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	})

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "julia"))
		name, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "julia", name)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "julia"))
		require.NoError(t, store.Save(ctx, "gordon"))
		name, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "gordon", name)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "julia"))
		require.NoError(t, store.Clear(ctx))
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrNotLoggedIn)

		// Idempotent
		assert.NoError(t, store.Clear(ctx))
	})
}
