package billing

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispbot/billnotify/internal/credcache"
)

func TestSessionProvider_ManagerToken(t *testing.T) {
	ctx := context.Background()
	futureExp := time.Now().Add(time.Hour).Unix()

	t.Run("cache miss authenticates once and caches", func(t *testing.T) {
		cache := credcache.NewCache(slog.Default())
		auth := NewMockAuthenticator(t)
		auth.On("AuthenticateManager", ctx).
			Return(Session{Token: "mgr-tok", ExpiresAt: futureExp}, nil).
			Once()

		p := NewSessionProvider(cache, auth, slog.Default())

		tok, err := p.ManagerToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "mgr-tok", tok)

		// Second call must come from the cache; the mock would fail on a
		// second handshake.
		tok, err = p.ManagerToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "mgr-tok", tok)
	})

	t.Run("cache hit skips the authenticator", func(t *testing.T) {
		cache := credcache.NewCache(slog.Default())
		cache.PutManagerCredential("cached", futureExp)
		auth := NewMockAuthenticator(t)

		p := NewSessionProvider(cache, auth, slog.Default())

		tok, err := p.ManagerToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "cached", tok)
	})

	t.Run("handshake failure propagates uncached", func(t *testing.T) {
		cache := credcache.NewCache(slog.Default())
		auth := NewMockAuthenticator(t)
		auth.On("AuthenticateManager", ctx).
			Return(Session{}, errors.New("billing down"))

		p := NewSessionProvider(cache, auth, slog.Default())

		_, err := p.ManagerToken(ctx)
		assert.ErrorContains(t, err, "authenticate manager")
		_, found := cache.ManagerCredential()
		assert.False(t, found)
	})
}

func TestSessionProvider_SubscriberToken(t *testing.T) {
	ctx := context.Background()
	futureExp := time.Now().Add(time.Hour).Unix()

	t.Run("expired cached token re-authenticates", func(t *testing.T) {
		cache := credcache.NewCache(slog.Default())
		cache.PutSubscriberCredential(42, "stale", time.Now().Add(-time.Minute).Unix())

		auth := NewMockAuthenticator(t)
		auth.On("AuthenticateSubscriber", ctx, int64(42)).
			Return(Session{Token: "fresh", ExpiresAt: futureExp}, nil).
			Once()

		p := NewSessionProvider(cache, auth, slog.Default())

		tok, err := p.SubscriberToken(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "fresh", tok)

		cached, found := cache.SubscriberCredential(42)
		require.True(t, found)
		assert.Equal(t, "fresh", cached)
	})

	t.Run("each subscriber gets its own slot", func(t *testing.T) {
		cache := credcache.NewCache(slog.Default())
		cache.PutSubscriberCredential(1, "one", futureExp)

		auth := NewMockAuthenticator(t)
		auth.On("AuthenticateSubscriber", ctx, int64(2)).
			Return(Session{Token: "two", ExpiresAt: futureExp}, nil).
			Once()

		p := NewSessionProvider(cache, auth, slog.Default())

		tok, err := p.SubscriberToken(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "one", tok)

		tok, err = p.SubscriberToken(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "two", tok)
	})
}
