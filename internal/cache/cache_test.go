package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func setupMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	require.NotNil(t, GetClient(), "miniredis should be reachable")
	t.Cleanup(Close)
}

func TestGetSetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	found, err := GetJSON(ctx, UserKey(1), &cachedUser{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, UserKey(1), cachedUser{ID: 1, Username: "alice"}, UserTTL))

	var got cachedUser
	found, err = GetJSON(ctx, UserKey(1), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", got.Username)
}

func TestAsideFetchesOnceThenServesFromCache(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			fetches++
			*dest = cachedUser{ID: 7, Username: "bob"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "bob", first.Username)

	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should hit the cache")
	assert.Equal(t, "bob", second.Username)
}

func TestInvalidate(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostSlugKey("hello-world"), cachedUser{ID: 1}, PostTTL))
	InvalidatePostSlug(ctx, "hello-world")

	found, err := GetJSON(ctx, PostSlugKey("hello-world"), &cachedUser{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHelpersAreNoopsWithoutRedis(t *testing.T) {
	client = nil
	ctx := context.Background()

	found, err := GetJSON(ctx, "any", &cachedUser{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(ctx, "any", cachedUser{}, UserTTL))

	// Aside degrades to a plain fetch.
	var got cachedUser
	err = Aside(ctx, "any", &got, UserTTL, func() error {
		got = cachedUser{ID: 3}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, uint(3), got.ID)
}
