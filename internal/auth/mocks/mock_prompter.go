// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPrompter is a mock implementation of auth.Prompter.
type MockPrompter struct {
	mock.Mock
}

// NewMockPrompter creates a MockPrompter whose expectations are asserted on cleanup.
func NewMockPrompter(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockPrompter {
	m := &MockPrompter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// PromptUsername provides a mock function.
func (m *MockPrompter) PromptUsername(ctx context.Context, server string) (string, error) {
	ret := m.Called(ctx, server)
	return ret.String(0), ret.Error(1)
}

// PromptPassword provides a mock function.
func (m *MockPrompter) PromptPassword(ctx context.Context, server, username string) (string, error) {
	ret := m.Called(ctx, server, username)
	return ret.String(0), ret.Error(1)
}
