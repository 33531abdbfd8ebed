// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mocks provides testify mocks of the pki interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
)

var _ pki.Backend = (*Backend)(nil)

// Backend is a mock of pki.Backend.
//
// Handlers registered with Run may create the output files so that
// engine tests can observe state across calls.
type Backend struct {
	mock.Mock
}

// GenerateKey provides a mock function.
func (m *Backend) GenerateKey(ctx context.Context, outPath string, bits int) error {
	ret := m.Called(ctx, outPath, bits)
	return ret.Error(0)
}

// CreateCSR provides a mock function.
func (m *Backend) CreateCSR(ctx context.Context, keyPath string, subject pki.Subject, outPath string, san *pki.SANExtension) error {
	ret := m.Called(ctx, keyPath, subject, outPath, san)
	return ret.Error(0)
}

// ExtractCSR provides a mock function.
func (m *Backend) ExtractCSR(ctx context.Context, certPath, keyPath, outPath string) error {
	ret := m.Called(ctx, certPath, keyPath, outPath)
	return ret.Error(0)
}

// SelfSign provides a mock function.
func (m *Backend) SelfSign(ctx context.Context, csrPath, keyPath string, days int, outPath string, san *pki.SANExtension) error {
	ret := m.Called(ctx, csrPath, keyPath, days, outPath, san)
	return ret.Error(0)
}

// CASign provides a mock function.
func (m *Backend) CASign(ctx context.Context, csrPath string, issuer pki.IssuerRef, days int, outPath string, san *pki.SANExtension) error {
	ret := m.Called(ctx, csrPath, issuer, days, outPath, san)
	return ret.Error(0)
}

// ReadExpiration provides a mock function.
func (m *Backend) ReadExpiration(ctx context.Context, certPath string) (time.Time, error) {
	ret := m.Called(ctx, certPath)

	var notAfter time.Time
	if fn, ok := ret.Get(0).(func(context.Context, string) time.Time); ok {
		notAfter = fn(ctx, certPath)
	} else {
		notAfter = ret.Get(0).(time.Time)
	}
	return notAfter, ret.Error(1)
}
