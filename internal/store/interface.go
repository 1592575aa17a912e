package store

import (
	"context"
	"time"

	"github.com/ispbot/billnotify/internal/model"
)

// Notifications defines DB operations for delivery records.
// SaveAll and SelectAndRemoveDue are atomic with respect to concurrent
// send/cleanup runs of the same kind.
type Notifications interface {
	// SaveAll persists one run's collected delivery records in a single
	// batched write.
	SaveAll(ctx context.Context, records []model.DeliveryRecord) error
	// SelectAndRemoveDue removes every record older than the retention
	// window and returns the removed set. A record is returned by at most
	// one caller.
	SelectAndRemoveDue(ctx context.Context, retention time.Duration) ([]model.DeliveryRecord, error)
	Ping(ctx context.Context) error
}
