package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/ispbot/billnotify/internal/model"
)

// MockReporter is a testify mock of Reporter for service tests.
type MockReporter struct {
	mock.Mock
}

func NewMockReporter(t *testing.T) *MockReporter {
	m := &MockReporter{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockReporter) Start(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockReporter) ReportRun(ctx context.Context, report model.RunReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReporter) Close(ctx context.Context) {
	m.Called(ctx)
}
