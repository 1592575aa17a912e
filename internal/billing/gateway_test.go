package billing

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispbot/billnotify/internal/credcache"
	apperr "github.com/ispbot/billnotify/internal/errors"
	"github.com/ispbot/billnotify/internal/model"
)

func newGatewayWithBackend(t *testing.T, backend http.HandlerFunc) Gateway {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cache := credcache.NewCache(slog.Default())
	cache.PutManagerCredential("mgr-tok", time.Now().Add(time.Hour).Unix())
	sessions := NewSessionProvider(cache, NewMockAuthenticator(t), slog.Default())

	return NewHTTPGateway(srv.URL, srv.Client(), sessions, slog.Default())
}

func TestHTTPGateway_BuildNotification(t *testing.T) {
	sub := model.Subscriber{ChatID: 42, NotifyEnabled: true}

	t.Run("returns rendered payload with manager session", func(t *testing.T) {
		g := newGatewayWithBackend(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer mgr-tok", r.Header.Get("Authorization"))
			assert.Equal(t, "/subscribers/42/payment-reminder", r.URL.Path)
			assert.Equal(t, "5", r.URL.Query().Get("days"))
			w.Write([]byte(`{"text":"5 days left to pay"}`))
		})

		payload, err := g.BuildNotification(context.Background(), sub, 5)
		require.NoError(t, err)
		assert.Equal(t, model.Payload{Text: "5 days left to pay"}, payload)
	})

	t.Run("missing agreement is a domain rejection", func(t *testing.T) {
		g := newGatewayWithBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := g.BuildNotification(context.Background(), sub, 1)
		assert.ErrorIs(t, err, apperr.ErrNoAgreement)
	})

	t.Run("backend 5xx is a transport error", func(t *testing.T) {
		g := newGatewayWithBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := g.BuildNotification(context.Background(), sub, 1)
		assert.ErrorIs(t, err, apperr.ErrTransport)
	})
}
