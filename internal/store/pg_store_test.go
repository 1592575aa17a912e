package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispbot/billnotify/internal/model"
)

func newMockStore(t *testing.T) (*postgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &postgresStore{
		db:  sqlx.NewDb(db, "postgres"),
		now: func() time.Time { return time.Unix(1_000_000, 0) },
	}
	return s, mock
}

func TestPostgresStore_SaveAll(t *testing.T) {
	t.Run("batch insert is a single statement", func(t *testing.T) {
		s, mock := newMockStore(t)

		records := []model.DeliveryRecord{
			{ChatID: 1, MessageID: 100, SentAt: 999_000},
			{ChatID: 2, MessageID: 200, SentAt: 999_100},
			{ChatID: 3, MessageID: 300, SentAt: 999_200},
		}

		mock.ExpectExec("INSERT INTO delivery_records").
			WithArgs(
				int64(1), int64(100), int64(999_000),
				int64(2), int64(200), int64(999_100),
				int64(3), int64(300), int64(999_200),
			).
			WillReturnResult(sqlmock.NewResult(0, 3))

		err := s.SaveAll(context.Background(), records)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch touches nothing", func(t *testing.T) {
		s, mock := newMockStore(t)

		err := s.SaveAll(context.Background(), nil)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_SelectAndRemoveDue(t *testing.T) {
	// Two records exist, aged 10h and 40h against a 32h window. Only the
	// 40h one is due, and the DELETE ... RETURNING removes it in the same
	// statement, so it can never be claimed twice.
	s, mock := newMockStore(t)

	retention := 32 * time.Hour
	cutoff := s.now().Add(-retention).Unix()
	dueSentAt := s.now().Add(-40 * time.Hour).Unix()

	mock.ExpectQuery("DELETE FROM delivery_records").
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"chat_id", "message_id", "sent_at"}).
			AddRow(int64(7), int64(700), dueSentAt))

	removed, err := s.SelectAndRemoveDue(context.Background(), retention)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, model.DeliveryRecord{ChatID: 7, MessageID: 700, SentAt: dueSentAt}, removed[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}
