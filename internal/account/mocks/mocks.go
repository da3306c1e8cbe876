// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

// Package mocks provides testify mocks for the account package interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/smartdish/accounts/internal/account"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockGateway is a mock implementation of account.Gateway.
type MockGateway struct {
	mock.Mock
}

// NewMockGateway creates a MockGateway whose expectations are asserted on
// test cleanup.
func NewMockGateway(t testingT) *MockGateway {
	m := &MockGateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGateway) Exists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateway) Create(ctx context.Context, in account.NewAccount) (*account.Account, error) {
	args := m.Called(ctx, in)
	var acct *account.Account
	if args.Get(0) != nil {
		acct = args.Get(0).(*account.Account)
	}
	return acct, args.Error(1)
}

func (m *MockGateway) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	var acct *account.Account
	if args.Get(0) != nil {
		acct = args.Get(0).(*account.Account)
	}
	return acct, args.Error(1)
}

func (m *MockGateway) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	var acct *account.Account
	if args.Get(0) != nil {
		acct = args.Get(0).(*account.Account)
	}
	return acct, args.Error(1)
}

func (m *MockGateway) GetAuthView(ctx context.Context, email string) (*account.AuthView, error) {
	args := m.Called(ctx, email)
	var view *account.AuthView
	if args.Get(0) != nil {
		view = args.Get(0).(*account.AuthView)
	}
	return view, args.Error(1)
}

func (m *MockGateway) ListAll(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	var accts []*account.Account
	if args.Get(0) != nil {
		accts = args.Get(0).([]*account.Account)
	}
	return accts, args.Error(1)
}

func (m *MockGateway) Update(ctx context.Context, id int64, payload account.FullPayload) (*account.Account, error) {
	args := m.Called(ctx, id, payload)
	var acct *account.Account
	if args.Get(0) != nil {
		acct = args.Get(0).(*account.Account)
	}
	return acct, args.Error(1)
}

func (m *MockGateway) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGateway) IssueResetToken(ctx context.Context, accountID int64) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ValidateResetToken(ctx context.Context, token string) (*account.TokenValidation, error) {
	args := m.Called(ctx, token)
	var v *account.TokenValidation
	if args.Get(0) != nil {
		v = args.Get(0).(*account.TokenValidation)
	}
	return v, args.Error(1)
}

func (m *MockGateway) SetCredentialHash(ctx context.Context, accountID int64, hash string) error {
	args := m.Called(ctx, accountID, hash)
	return args.Error(0)
}

func (m *MockGateway) MarkTokenUsed(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockNotifier is a mock implementation of account.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a MockNotifier whose expectations are asserted
// on test cleanup.
func NewMockNotifier(t testingT) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotifier) SendResetLink(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

// MockPasswordHasher is a mock implementation of account.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations
// are asserted on test cleanup.
func NewMockPasswordHasher(t testingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(secret string) (string, error) {
	args := m.Called(secret)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(secret, hash string) (bool, error) {
	args := m.Called(secret, hash)
	return args.Bool(0), args.Error(1)
}

// MockTokenIssuer is a mock implementation of account.TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

// NewMockTokenIssuer creates a MockTokenIssuer whose expectations are
// asserted on test cleanup.
func NewMockTokenIssuer(t testingT) *MockTokenIssuer {
	m := &MockTokenIssuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenIssuer) Issue(email string, role account.Role) (string, error) {
	args := m.Called(email, role)
	return args.String(0), args.Error(1)
}
