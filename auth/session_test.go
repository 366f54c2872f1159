package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	sessions := InMemorySessionStore(time.Minute)

	token, err := NewSessionToken()
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, token, "user"))

	username, found, err := sessions.Lookup(ctx, token)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "user", username)

	require.NoError(t, sessions.Delete(ctx, token))
	_, found, err = sessions.Lookup(ctx, token)
	require.NoError(t, err)
	assert.False(t, found, "a deleted session must not resolve")

	// logging out twice is not an error
	require.NoError(t, sessions.Delete(ctx, token))
}

func TestSessionTokensAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := NewSessionToken()
		require.NoError(t, err)
		require.False(t, seen[token], "token generated twice")
		seen[token] = true
	}
}
