package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/ispbot/billnotify/internal/model"
)

// MockGateway is a testify mock of Gateway for service tests.
type MockGateway struct {
	mock.Mock
}

func NewMockGateway(t *testing.T) *MockGateway {
	m := &MockGateway{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGateway) BuildNotification(ctx context.Context, sub model.Subscriber, daysToLast int) (model.Payload, error) {
	args := m.Called(ctx, sub, daysToLast)
	return args.Get(0).(model.Payload), args.Error(1)
}

// MockAuthenticator is a testify mock of Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

func NewMockAuthenticator(t *testing.T) *MockAuthenticator {
	m := &MockAuthenticator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAuthenticator) AuthenticateManager(ctx context.Context) (Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(Session), args.Error(1)
}

func (m *MockAuthenticator) AuthenticateSubscriber(ctx context.Context, chatID int64) (Session, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(Session), args.Error(1)
}
