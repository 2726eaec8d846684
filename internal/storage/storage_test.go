package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "weapons/ab/abcd.jpg", []byte("jpeg-bytes")))
	got, err := store.Get(ctx, "weapons/ab/abcd.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), got)

	require.NoError(t, store.Put(ctx, "weapons/ab/abcd.jpg", []byte("replaced")))
	got, err = store.Get(ctx, "weapons/ab/abcd.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), got)

	require.NoError(t, store.Delete(ctx, "weapons/ab/abcd.jpg"))
	_, err = store.Get(ctx, "weapons/ab/abcd.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(ctx, "weapons/ab/abcd.jpg"))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../outside", "a/../../b", "a//b", `a\b`} {
		assert.ErrorIs(t, store.Put(ctx, key, []byte("x")), ErrInvalidKey, key)
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStore_CancelledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Put(ctx, "k", []byte("x")), context.Canceled)
}
