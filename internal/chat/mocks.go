package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/ispbot/billnotify/internal/model"
)

// MockChannel is a testify mock of Channel for service tests.
type MockChannel struct {
	mock.Mock
}

func NewMockChannel(t *testing.T) *MockChannel {
	m := &MockChannel{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockChannel) Deliver(ctx context.Context, chatID int64, payload model.Payload) (model.DeliveryRecord, error) {
	args := m.Called(ctx, chatID, payload)
	return args.Get(0).(model.DeliveryRecord), args.Error(1)
}

func (m *MockChannel) Retract(ctx context.Context, chatID int64, messageID int64) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}
