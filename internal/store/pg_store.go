package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ispbot/billnotify/internal/model"
)

type postgresStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *sqlx.DB) Notifications {
	return &postgresStore{db: db, now: time.Now}
}

// SaveAll inserts the whole batch with one statement. An empty batch is a
// no-op rather than an error.
func (s *postgresStore) SaveAll(ctx context.Context, records []model.DeliveryRecord) error {
	if len(records) == 0 {
		return nil
	}
	query := `INSERT INTO delivery_records (chat_id, message_id, sent_at)
		VALUES (:chat_id, :message_id, :sent_at)`
	_, err := s.db.NamedExecContext(ctx, query, records)
	return err
}

// SelectAndRemoveDue deletes due records and returns them in one statement,
// so two concurrent cleanup runs can never both claim the same record.
func (s *postgresStore) SelectAndRemoveDue(ctx context.Context, retention time.Duration) ([]model.DeliveryRecord, error) {
	cutoff := s.now().Add(-retention).Unix()
	query := `DELETE FROM delivery_records
		WHERE sent_at <= $1
		RETURNING chat_id, message_id, sent_at`

	var removed []model.DeliveryRecord
	if err := s.db.SelectContext(ctx, &removed, query, cutoff); err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
