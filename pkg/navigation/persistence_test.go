package navigation

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisPreferenceStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisPreferenceStore(client, ""), mr
}

func TestRedisPreferenceStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	want := Preferences{
		LastAccessedDepartments: map[string]string{
			"user-1": "dept-1",
			"user-2": "dept-2",
		},
		IsBreadcrumbMode: false,
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisPreferenceStoreMissingKey(t *testing.T) {
	store, _ := newRedisStore(t)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), got)
}

func TestRedisPreferenceStoreCorruptBlob(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(preferenceKey, "{not json"))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), got)

	// The corrupt blob is discarded rather than left to fail again.
	assert.False(t, mr.Exists(preferenceKey))
}

func TestRedisPreferenceStoreNullMap(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(preferenceKey, `{"lastAccessedDepartments":null,"isBreadcrumbMode":true}`))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.LastAccessedDepartments)
	assert.Empty(t, got.LastAccessedDepartments)
	assert.True(t, got.IsBreadcrumbMode)
}

func TestRedisPreferenceStoreConnectionError(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	got, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, DefaultPreferences(), got)
}

func TestMemoryPreferenceStore(t *testing.T) {
	store := NewMemoryPreferenceStore()
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), got)

	want := Preferences{
		LastAccessedDepartments: map[string]string{"user-1": "dept-1"},
		IsBreadcrumbMode:        false,
	}
	require.NoError(t, store.Save(ctx, want))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The store hands out copies, not its internal map.
	got.LastAccessedDepartments["user-1"] = "mutated"
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dept-1", again.LastAccessedDepartments["user-1"])
}
