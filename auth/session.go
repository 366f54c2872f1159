package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	// SessionStore keeps the mapping from opaque session tokens to the
	// username they authenticate. Entries live for the configured TTL
	// or until logout, whichever comes first.
	SessionStore interface {
		Save(ctx context.Context, token, username string) error
		Lookup(ctx context.Context, token string) (string, bool, error)
		Delete(ctx context.Context, token string) error
	}

	memSessions struct {
		cache *bigcache.BigCache
	}
)

// InMemorySessionStore returns a process-lifetime session store. Tokens
// are lost on restart, which forces a fresh login, never a silent
// authentication.
func InMemorySessionStore(ttl time.Duration) SessionStore {
	cache, _ := bigcache.NewBigCache(bigcache.DefaultConfig(ttl))
	return &memSessions{cache: cache}
}

// NewSessionToken generates a random 32-byte token encoded as
// unpadded base64url.
func NewSessionToken() (string, error) {
	var buf [32]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		return "", fmt.Errorf("auth: unable to generate session token, cause %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}

func (m *memSessions) Save(ctx context.Context, token, username string) error {
	return m.cache.Set(token, []byte(username))
}

func (m *memSessions) Lookup(ctx context.Context, token string) (string, bool, error) {
	buf, err := m.cache.Get(token)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return string(buf), true, nil
}

func (m *memSessions) Delete(ctx context.Context, token string) error {
	err := m.cache.Delete(token)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		// deleting an expired or already removed session is fine
		return nil
	}
	return err
}
