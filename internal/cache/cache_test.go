package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("bbcode", "markdown", []byte("[b]x[/b]"))
	require.Equal(t, a, Key("bbcode", "markdown", []byte("[b]x[/b]")))
	require.Len(t, a, len(KeyPrefix)+64)

	require.NotEqual(t, a, Key("bbcode", "html", []byte("[b]x[/b]")))
	require.NotEqual(t, a, Key("bbcode", "markdown", []byte("[b]y[/b]")))
	// the separator keeps format names from running into the input
	require.NotEqual(t, Key("a", "bc", nil), Key("ab", "c", nil))
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", Entry{Output: "x"}, time.Minute))

	entry, err := c.Get(context.Background(), "k")
	require.ErrorIs(t, err, ErrMiss)
	require.Nil(t, entry)
}

func TestRedisCacheUnreachable(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer c.Close()

	ctx := context.Background()
	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMiss)

	require.Error(t, c.Set(ctx, "k", Entry{Output: "x"}, time.Minute))
	require.Error(t, c.Ping(ctx))
}
