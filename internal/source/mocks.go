package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/ispbot/billnotify/internal/model"
)

// MockSubscribers is a testify mock of Subscribers for service tests.
type MockSubscribers struct {
	mock.Mock
}

func NewMockSubscribers(t *testing.T) *MockSubscribers {
	m := &MockSubscribers{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSubscribers) ListNotificationEnabled(ctx context.Context) ([]model.Subscriber, error) {
	args := m.Called(ctx)
	if subs, ok := args.Get(0).([]model.Subscriber); ok {
		return subs, args.Error(1)
	}
	return nil, args.Error(1)
}
