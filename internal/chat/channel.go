// Package chat delivers rendered payloads to subscriber chats through the
// bot API and retracts them again during cleanup.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperr "github.com/ispbot/billnotify/internal/errors"
	"github.com/ispbot/billnotify/internal/model"
)

// Channel performs chat delivery and its reversal. Both operations fail
// with apperr.ErrTransport on an unreachable destination.
type Channel interface {
	// Deliver sends the payload and returns the delivery record that
	// later drives retraction.
	Deliver(ctx context.Context, chatID int64, payload model.Payload) (model.DeliveryRecord, error)
	// Retract deletes a previously delivered message identified by the
	// record's message reference.
	Retract(ctx context.Context, chatID int64, messageID int64) error
}

type botChannel struct {
	baseURL string
	token   string
	client  *http.Client
	now     func() time.Time
	log     *slog.Logger
}

// NewBotChannel builds a Channel over a Telegram-style bot HTTP API.
func NewBotChannel(baseURL, token string, client *http.Client, log *slog.Logger) Channel {
	if client == nil {
		client = http.DefaultClient
	}
	return &botChannel{
		baseURL: baseURL,
		token:   token,
		client:  client,
		now:     time.Now,
		log:     log,
	}
}

type sendMessageResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Description string `json:"description"`
}

func (c *botChannel) Deliver(ctx context.Context, chatID int64, payload model.Payload) (model.DeliveryRecord, error) {
	form := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {payload.Text},
	}

	var resp sendMessageResponse
	if err := c.call(ctx, "sendMessage", form, &resp); err != nil {
		return model.DeliveryRecord{}, err
	}
	if !resp.OK {
		return model.DeliveryRecord{}, fmt.Errorf("%w: sendMessage: %s", apperr.ErrTransport, resp.Description)
	}

	c.log.DebugContext(ctx, "Delivered notification",
		slog.Int64("chat_id", chatID),
		slog.Int64("message_id", resp.Result.MessageID))

	return model.DeliveryRecord{
		ChatID:    chatID,
		MessageID: resp.Result.MessageID,
		SentAt:    c.now().Unix(),
	}, nil
}

func (c *botChannel) Retract(ctx context.Context, chatID int64, messageID int64) error {
	form := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"message_id": {strconv.FormatInt(messageID, 10)},
	}

	var resp sendMessageResponse
	if err := c.call(ctx, "deleteMessage", form, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("%w: deleteMessage: %s", apperr.ErrTransport, resp.Description)
	}
	return nil
}

func (c *botChannel) call(ctx context.Context, method string, form url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s?%s", c.baseURL, c.token, method, form.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
