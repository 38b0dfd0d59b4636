package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/booking-admin/internal/persistence"
)

// Requires a reachable server; set DASHBOARD_TEST_REDIS_ADDR to run.
func TestStore_KeyValue(t *testing.T) {
	addr := os.Getenv("DASHBOARD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DASHBOARD_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := New(ctx, Options{Addr: addr, KeyPrefix: "test-" + uuid.NewString() + ":"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Get(ctx, "token")
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	require.NoError(t, store.Set(ctx, "token", "abc"))
	value, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	require.NoError(t, store.Delete(ctx, "token"))
	require.NoError(t, store.Delete(ctx, "token"))
	_, err = store.Get(ctx, "token")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestStore_Validation(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)

	store := NewWithClient(nil, "")
	assert.Equal(t, DefaultKeyPrefix, store.prefix)
	assert.ErrorIs(t, store.Set(context.Background(), " ", "v"), persistence.ErrEmptyKey)
}
