package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendPasswordResetMail(email, username, resetURL string) error {
	args := m.Called(email, username, resetURL)
	return args.Error(0)
}

func (m *MockMailManager) SendPasswordChangedMail(email, username string) error {
	args := m.Called(email, username)
	return args.Error(0)
}
