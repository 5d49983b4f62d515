// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mocks provides testify mocks for the auth interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/holomush/restoclient/internal/auth"
)

// MockTokenAPI is a mock implementation of auth.TokenAPI.
type MockTokenAPI struct {
	mock.Mock
}

// NewMockTokenAPI creates a MockTokenAPI whose expectations are asserted on cleanup.
func NewMockTokenAPI(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockTokenAPI {
	m := &MockTokenAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// GetToken provides a mock function.
func (m *MockTokenAPI) GetToken(ctx context.Context) (auth.TokenResult, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(auth.TokenResult), ret.Error(1)
}

// CheckToken provides a mock function.
func (m *MockTokenAPI) CheckToken(ctx context.Context, token string) (bool, error) {
	ret := m.Called(ctx, token)
	return ret.Bool(0), ret.Error(1)
}

// RevokeToken provides a mock function.
func (m *MockTokenAPI) RevokeToken(ctx context.Context, token string) error {
	ret := m.Called(ctx, token)
	return ret.Error(0)
}
