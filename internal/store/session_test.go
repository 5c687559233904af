package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())
	return client, mr
}

func sessionBackends(t *testing.T) map[string]SessionStore {
	client, _ := setupTestRedis(t)
	return map[string]SessionStore{
		"sqlite": Store{Dir: t.TempDir()},
		"redis":  NewRedisSessionStore(client, "test"),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range sessionBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()

			tok, user, err := st.LoadSession(ctx)
			require.NoError(t, err)
			assert.Empty(t, tok)
			assert.Empty(t, user)

			require.NoError(t, st.SaveSession(ctx, "tok-1", `{"id":1,"email":"a@example.com","role":"member"}`))
			tok, user, err = st.LoadSession(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok-1", tok)
			assert.Contains(t, user, "a@example.com")

			require.NoError(t, st.SaveSession(ctx, "tok-2", `{"id":1,"email":"b@example.com","role":"member"}`))
			tok, user, err = st.LoadSession(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok-2", tok)
			assert.Contains(t, user, "b@example.com")

			require.NoError(t, st.ClearSession(ctx))
			tok, user, err = st.LoadSession(ctx)
			require.NoError(t, err)
			assert.Empty(t, tok)
			assert.Empty(t, user)
		})
	}
}

func TestSaveSessionRequiresBoth(t *testing.T) {
	ctx := context.Background()
	for name, st := range sessionBackends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, st.SaveSession(ctx, "tok", ""))
			assert.Error(t, st.SaveSession(ctx, "", `{"email":"a@example.com"}`))

			tok, user, err := st.LoadSession(ctx)
			require.NoError(t, err)
			assert.Empty(t, tok)
			assert.Empty(t, user)
		})
	}
}

func TestRedisSessionKeysAreNamespaced(t *testing.T) {
	client, mr := setupTestRedis(t)
	a := NewRedisSessionStore(client, "alice")
	b := NewRedisSessionStore(client, "")

	ctx := context.Background()
	require.NoError(t, a.SaveSession(ctx, "tok-a", `{"email":"a@example.com"}`))

	assert.True(t, mr.Exists("pulse:session:alice:pp_access_token"))
	assert.True(t, mr.Exists("pulse:session:alice:pp_user"))

	tok, _, err := b.LoadSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "default namespace must not see alice's session")
}
