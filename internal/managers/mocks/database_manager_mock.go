package mocks

import (
	"context"

	"github.com/jxiaof/next16-demo/internal/interfaces"
	"github.com/stretchr/testify/mock"
)

type MockDatabaseManager struct {
	mock.Mock
}

func (m *MockDatabaseManager) GetPool() interfaces.PgxPoolIface {
	args := m.Called()
	return args.Get(0).(interfaces.PgxPoolIface)
}

func (m *MockDatabaseManager) Healthy(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}
