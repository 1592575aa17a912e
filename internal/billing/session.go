// Package billing talks to the ISP billing backend. It never performs the
// authentication handshake itself; that lives behind the Authenticator
// contract. What it does own is reusing handshake results through the
// credential cache so repeated calls share one short-lived session.
package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ispbot/billnotify/internal/credcache"
)

// Session is an issued billing-backend session: an opaque token plus its
// absolute expiry in epoch seconds.
type Session struct {
	Token     string
	ExpiresAt int64
}

// Authenticator performs the actual handshake against the billing backend.
type Authenticator interface {
	// AuthenticateManager opens the single privileged session.
	AuthenticateManager(ctx context.Context) (Session, error)
	// AuthenticateSubscriber opens a session scoped to one subscriber.
	AuthenticateSubscriber(ctx context.Context, chatID int64) (Session, error)
}

// SessionProvider hands out valid session tokens, hitting the cache first
// and authenticating only on a miss. Any caller needing authenticated
// billing access goes through here.
type SessionProvider struct {
	cache *credcache.Cache
	auth  Authenticator
	log   *slog.Logger
}

func NewSessionProvider(cache *credcache.Cache, auth Authenticator, log *slog.Logger) *SessionProvider {
	return &SessionProvider{cache: cache, auth: auth, log: log}
}

// ManagerToken returns a live privileged token, authenticating and caching
// the result when the cached one is absent or expired.
func (p *SessionProvider) ManagerToken(ctx context.Context) (string, error) {
	if tok, ok := p.cache.ManagerCredential(); ok {
		return tok, nil
	}

	sess, err := p.auth.AuthenticateManager(ctx)
	if err != nil {
		return "", fmt.Errorf("authenticate manager: %w", err)
	}
	p.log.InfoContext(ctx, "Opened new manager billing session")
	return p.cache.PutManagerCredential(sess.Token, sess.ExpiresAt), nil
}

// SubscriberToken returns a live token for one subscriber with the same
// cache-or-authenticate behavior as ManagerToken.
func (p *SessionProvider) SubscriberToken(ctx context.Context, chatID int64) (string, error) {
	if tok, ok := p.cache.SubscriberCredential(chatID); ok {
		return tok, nil
	}

	sess, err := p.auth.AuthenticateSubscriber(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("authenticate subscriber %d: %w", chatID, err)
	}
	p.log.InfoContext(ctx, "Opened new subscriber billing session", slog.Int64("chat_id", chatID))
	return p.cache.PutSubscriberCredential(chatID, sess.Token, sess.ExpiresAt), nil
}
