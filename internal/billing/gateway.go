package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apperr "github.com/ispbot/billnotify/internal/errors"
	"github.com/ispbot/billnotify/internal/model"
)

// Gateway produces a renderable payment-reminder payload for one subscriber
// and a days-remaining marker. It fails with apperr.ErrNoAgreement when the
// backend rejects the subscriber and apperr.ErrTransport when unreachable.
type Gateway interface {
	BuildNotification(ctx context.Context, sub model.Subscriber, daysToLast int) (model.Payload, error)
}

type httpGateway struct {
	baseURL  string
	client   *http.Client
	sessions *SessionProvider
	log      *slog.Logger
}

// NewHTTPGateway builds a Gateway against the billing backend's HTTP API,
// authenticated with the shared manager session.
func NewHTTPGateway(baseURL string, client *http.Client, sessions *SessionProvider, log *slog.Logger) Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpGateway{
		baseURL:  baseURL,
		client:   client,
		sessions: sessions,
		log:      log,
	}
}

// reminderResponse is the backend's rendered reminder for one subscriber.
type reminderResponse struct {
	Text string `json:"text"`
}

func (g *httpGateway) BuildNotification(ctx context.Context, sub model.Subscriber, daysToLast int) (model.Payload, error) {
	token, err := g.sessions.ManagerToken(ctx)
	if err != nil {
		return model.Payload{}, fmt.Errorf("%w: %v", apperr.ErrTransport, err)
	}

	url := fmt.Sprintf("%s/subscribers/%d/payment-reminder?days=%d", g.baseURL, sub.ChatID, daysToLast)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Payload{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return model.Payload{}, fmt.Errorf("%w: %v", apperr.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		// The backend knows the chat but the subscriber has no active
		// agreement to remind about. Re-running will not help.
		return model.Payload{}, fmt.Errorf("%w: subscriber %d", apperr.ErrNoAgreement, sub.ChatID)
	default:
		return model.Payload{}, fmt.Errorf("%w: billing returned %d", apperr.ErrTransport, resp.StatusCode)
	}

	var reminder reminderResponse
	if err := json.NewDecoder(resp.Body).Decode(&reminder); err != nil {
		return model.Payload{}, fmt.Errorf("decode reminder: %w", err)
	}

	g.log.DebugContext(ctx, "Built payment reminder",
		slog.Int64("chat_id", sub.ChatID),
		slog.Int("days_to_last", daysToLast))
	return model.Payload{Text: reminder.Text}, nil
}
