// Package source yields the subscribers who opted into payment reminders.
// The snapshot it returns is read-only for the run; whether a subscriber
// shows up again on the next trigger is this source's concern, not the
// pipeline's.
package source

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ispbot/billnotify/internal/model"
)

// Subscribers lists the notification-enabled subscriber snapshot for one run.
type Subscribers interface {
	ListNotificationEnabled(ctx context.Context) ([]model.Subscriber, error)
}

type postgresSource struct {
	db *sqlx.DB
}

// NewPostgresSource wraps an existing connection pool.
func NewPostgresSource(db *sqlx.DB) Subscribers {
	return &postgresSource{db: db}
}

func (s *postgresSource) ListNotificationEnabled(ctx context.Context) ([]model.Subscriber, error) {
	var subs []model.Subscriber
	query := `SELECT chat_id, notify_enabled FROM subscribers WHERE notify_enabled = true`
	if err := s.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list notification-enabled subscribers: %w", err)
	}
	return subs, nil
}
