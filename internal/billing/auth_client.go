package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperr "github.com/ispbot/billnotify/internal/errors"
)

// httpAuthenticator opens billing sessions over the backend's auth endpoint.
// The backend owns credentials and expiry policy; this client only carries
// the calls.
type httpAuthenticator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAuthenticator builds an Authenticator against the billing backend.
func NewHTTPAuthenticator(baseURL string, client *http.Client) Authenticator {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpAuthenticator{baseURL: baseURL, client: client}
}

type sessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func (a *httpAuthenticator) AuthenticateManager(ctx context.Context) (Session, error) {
	return a.openSession(ctx, a.baseURL+"/auth/manager", nil)
}

func (a *httpAuthenticator) AuthenticateSubscriber(ctx context.Context, chatID int64) (Session, error) {
	body := map[string]int64{"chat_id": chatID}
	return a.openSession(ctx, a.baseURL+"/auth/subscriber", body)
}

func (a *httpAuthenticator) openSession(ctx context.Context, url string, body any) (Session, error) {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return Session{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &payload)
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", apperr.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("%w: auth returned %d", apperr.ErrTransport, resp.StatusCode)
	}

	var sess sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return Session{Token: sess.Token, ExpiresAt: sess.ExpiresAt}, nil
}
