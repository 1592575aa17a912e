package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ispbot/billnotify/internal/model"
)

// MockNotifications is a testify mock of Notifications for service tests.
type MockNotifications struct {
	mock.Mock
}

func NewMockNotifications(t *testing.T) *MockNotifications {
	m := &MockNotifications{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotifications) SaveAll(ctx context.Context, records []model.DeliveryRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockNotifications) SelectAndRemoveDue(ctx context.Context, retention time.Duration) ([]model.DeliveryRecord, error) {
	args := m.Called(ctx, retention)
	if recs, ok := args.Get(0).([]model.DeliveryRecord); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotifications) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
