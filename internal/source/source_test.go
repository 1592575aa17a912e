package source

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispbot/billnotify/internal/model"
)

func TestPostgresSource_ListNotificationEnabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresSource(sqlx.NewDb(db, "postgres"))

	t.Run("returns enabled subscribers", func(t *testing.T) {
		mock.ExpectQuery("SELECT chat_id, notify_enabled FROM subscribers").
			WillReturnRows(sqlmock.NewRows([]string{"chat_id", "notify_enabled"}).
				AddRow(int64(10), true).
				AddRow(int64(20), true))

		subs, err := s.ListNotificationEnabled(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []model.Subscriber{
			{ChatID: 10, NotifyEnabled: true},
			{ChatID: 20, NotifyEnabled: true},
		}, subs)
	})

	t.Run("wraps backend failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT chat_id, notify_enabled FROM subscribers").
			WillReturnError(errors.New("connection refused"))

		_, err := s.ListNotificationEnabled(context.Background())
		assert.ErrorContains(t, err, "list notification-enabled subscribers")
	})
}
