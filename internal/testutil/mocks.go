// Package testutil provides shared test helpers for the advisor packages.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/acadvisor/acadvisor/internal/ai"
)

// MockGateway is a testify mock of ai.Gateway
type MockGateway struct {
	mock.Mock
	GatewayName string
}

// NewMockGateway creates a mock reporting itself as "test"
func NewMockGateway() *MockGateway {
	return &MockGateway{GatewayName: "test"}
}

func (m *MockGateway) Name() string {
	return m.GatewayName
}

func (m *MockGateway) Enhance(ctx context.Context, req ai.Request) ai.Result {
	args := m.Called(ctx, req)
	return args.Get(0).(ai.Result)
}
