package guest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessions_PutLookupForget(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	sessions := NewRedisSessions(rdb, "test:anon:", time.Minute)

	_, err := sessions.Lookup(ctx, "a-1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, sessions.Put(ctx, "a-1", "g-1"))
	assert.True(t, mr.Exists("test:anon:a-1"))

	id, err := sessions.Lookup(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "g-1", id)

	require.NoError(t, sessions.Forget(ctx, "a-1"))
	_, err = sessions.Lookup(ctx, "a-1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.Error(t, sessions.Put(ctx, "", "g-1"))
	require.NoError(t, sessions.Forget(ctx, ""))
}

func TestRedisSessions_SlidingTTL(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	sessions := NewRedisSessions(rdb, "", time.Minute)

	require.NoError(t, sessions.Put(ctx, "a-1", "g-1"))

	mr.FastForward(40 * time.Second)
	_, err := sessions.Lookup(ctx, "a-1")
	require.NoError(t, err, "lookup extends the ttl")

	mr.FastForward(40 * time.Second)
	_, err = sessions.Lookup(ctx, "a-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = sessions.Lookup(ctx, "a-1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
