// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pki_test

import (
	"bytes"
	"context"
	"crypto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki/mocks"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki/native"
	x509certs "github.com/H0llyW00dzZ/local-ca/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/local-ca/src/logger"
)

const testBits = 2048

// clock is shared by the engine and the native backend so that issued
// validity windows and expiry checks agree.
type clock struct{ now time.Time }

func newClock() *clock { return &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func touch(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

type publicKey interface{ Equal(crypto.PublicKey) bool }

type env struct {
	clock  *clock
	layout pki.Layout
	engine *pki.Engine
	root   *pki.Identity
	leaf   *pki.Identity
	log    *bytes.Buffer
}

func newEnv(t *testing.T, opts ...pki.Option) *env {
	t.Helper()
	dir := t.TempDir()
	c := newClock()
	var buf bytes.Buffer

	base := []pki.Option{
		pki.WithClock(c.Now),
		pki.WithKeyBits(testBits),
		pki.WithBaseConfig(filepath.Join(dir, "openssl.cnf")),
		pki.WithLogger(logger.NewDaemonLogger(logger.LevelDebug, &buf)),
	}
	engine := pki.NewEngine(native.New(native.WithClock(c.Now)), append(base, opts...)...)

	layout := pki.Layout{BaseFolder: dir, UseSubfolders: true}
	root, err := pki.NewRootIdentity(layout, pki.Subject{CommonName: "Local Root", Email: "pki@example.com"}, 365)
	require.NoError(t, err)
	leaf, err := pki.NewLeafIdentity(layout, pki.Subject{CommonName: "example.com", Email: "ops@example.com"}, 30, root.AsIssuer())
	require.NoError(t, err)

	return &env{clock: c, layout: layout, engine: engine, root: root, leaf: leaf, log: &buf}
}

func assertNoTempFiles(t *testing.T, id *pki.Identity) {
	t.Helper()
	assert.NoFileExists(t, id.CSRPath())
	assert.NoFileExists(t, id.ConfigPath())
}

func TestEngineCheck(t *testing.T) {
	ctx := context.Background()
	codec := x509certs.New()

	tests := []struct {
		name     string
		testFunc func(t *testing.T, e *env)
	}{
		{
			name: "Fresh root is issued",
			testFunc: func(t *testing.T, e *env) {
				res, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)

				assert.Equal(t, "ca", res.Name)
				assert.Equal(t, pki.StateIssued, res.State)
				assert.True(t, res.KeyGenerated)
				assert.True(t, res.Changed())
				assert.True(t, res.NotAfter.Equal(e.clock.Now().Add(days(365))))
				assert.FileExists(t, e.root.KeyPath())
				assert.FileExists(t, e.root.CertPath())
				assertNoTempFiles(t, e.root)
				assert.Contains(t, e.log.String(), "Private key for '"+e.root.KeyPath()+"' generated.")
			},
		},
		{
			name: "Certificate directories are created on first issue",
			testFunc: func(t *testing.T, e *env) {
				require.NoDirExists(t, e.root.Dir())
				require.NoDirExists(t, e.leaf.Dir())

				_, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)
				assert.DirExists(t, e.root.Dir())
				assert.NoDirExists(t, e.leaf.Dir())

				_, err = e.engine.Check(ctx, e.leaf)
				require.NoError(t, err)
				assert.DirExists(t, e.leaf.Dir())
			},
		},
		{
			name: "Valid certificate is left alone",
			testFunc: func(t *testing.T, e *env) {
				_, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)
				before, err := os.ReadFile(e.root.CertPath())
				require.NoError(t, err)

				e.clock.Advance(days(100))
				res, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)

				after, err := os.ReadFile(e.root.CertPath())
				require.NoError(t, err)
				assert.Equal(t, pki.StateValid, res.State)
				assert.False(t, res.KeyGenerated)
				assert.False(t, res.Changed())
				assert.Equal(t, before, after)
				assert.Contains(t, e.log.String(), "is still valid. Nothing to be done.")
			},
		},
		{
			name: "Expired certificate is renewed with the same key",
			testFunc: func(t *testing.T, e *env) {
				_, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)
				key, err := os.ReadFile(e.root.KeyPath())
				require.NoError(t, err)
				old, err := codec.ReadFile(e.root.CertPath())
				require.NoError(t, err)

				e.clock.Advance(days(366))
				res, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)

				assert.Equal(t, pki.StateRenewed, res.State)
				assert.False(t, res.KeyGenerated)
				assert.True(t, res.NotAfter.After(e.clock.Now()))

				renewed, err := codec.ReadFile(e.root.CertPath())
				require.NoError(t, err)
				assert.Equal(t, old.RawSubject, renewed.RawSubject)
				assert.True(t, old.PublicKey.(publicKey).Equal(renewed.PublicKey))

				keyAfter, err := os.ReadFile(e.root.KeyPath())
				require.NoError(t, err)
				assert.Equal(t, key, keyAfter)
				assertNoTempFiles(t, e.root)
				assert.Contains(t, e.log.String(), "is invalid. It will be renewed.")
			},
		},
		{
			name: "Expiry boundary is not valid",
			testFunc: func(t *testing.T, e *env) {
				_, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)

				e.clock.Advance(days(365))
				res, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)
				assert.Equal(t, pki.StateRenewed, res.State)
			},
		},
		{
			name: "Leaf is issued by the root",
			testFunc: func(t *testing.T, e *env) {
				_, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)
				res, err := e.engine.Check(ctx, e.leaf)
				require.NoError(t, err)
				assert.Equal(t, pki.StateIssued, res.State)

				root, err := codec.ReadFile(e.root.CertPath())
				require.NoError(t, err)
				leaf, err := codec.ReadFile(e.leaf.CertPath())
				require.NoError(t, err)

				assert.Equal(t, root.RawSubject, leaf.RawIssuer)
				assert.NoError(t, leaf.CheckSignatureFrom(root))
				assert.Equal(t, []string{"example.com", "www.example.com"}, leaf.DNSNames)
				assert.FileExists(t, filepath.Join(filepath.Dir(e.root.Base()), "ca.srl"))
				assertNoTempFiles(t, e.leaf)
			},
		},
		{
			name: "Renewed leaf keeps its SAN names",
			testFunc: func(t *testing.T, e *env) {
				_, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)
				_, err = e.engine.Check(ctx, e.leaf)
				require.NoError(t, err)

				e.clock.Advance(days(31))
				res, err := e.engine.Check(ctx, e.leaf)
				require.NoError(t, err)
				assert.Equal(t, pki.StateRenewed, res.State)

				leaf, err := codec.ReadFile(e.leaf.CertPath())
				require.NoError(t, err)
				assert.Equal(t, []string{"example.com", "www.example.com"}, leaf.DNSNames)
				assertNoTempFiles(t, e.leaf)
			},
		},
		{
			name: "Leaf before root fails and cleans up",
			testFunc: func(t *testing.T, e *env) {
				_, err := e.engine.Check(ctx, e.leaf)
				require.Error(t, err)

				var step *pki.StepError
				require.ErrorAs(t, err, &step)
				assert.Equal(t, pki.StepCASign, step.Step)
				assert.ErrorIs(t, err, pki.ErrBackendFailed)
				assert.NoFileExists(t, e.leaf.CertPath())
				assertNoTempFiles(t, e.leaf)
			},
		},
		{
			name: "Lost key forces reissue",
			testFunc: func(t *testing.T, e *env) {
				_, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)
				require.NoError(t, os.Remove(e.root.KeyPath()))

				res, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)
				assert.Equal(t, pki.StateKeyRotated, res.State)
				assert.True(t, res.KeyGenerated)

				key, err := codec.ReadKeyFile(e.root.KeyPath())
				require.NoError(t, err)
				cert, err := codec.ReadFile(e.root.CertPath())
				require.NoError(t, err)
				assert.True(t, cert.PublicKey.(publicKey).Equal(key.Public()))
			},
		},
		{
			name: "Malformed certificate is fatal",
			testFunc: func(t *testing.T, e *env) {
				_, err := e.engine.Check(ctx, e.root)
				require.NoError(t, err)
				touch(t, e.root.CertPath(), "not a certificate")

				_, err = e.engine.Check(ctx, e.root)
				assert.ErrorIs(t, err, pki.ErrMalformedCertificate)

				data, err := os.ReadFile(e.root.CertPath())
				require.NoError(t, err)
				assert.Equal(t, "not a certificate", string(data))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t, newEnv(t))
		})
	}
}

func TestEngineRenewBefore(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, pki.WithRenewBefore(days(30)))

	_, err := e.engine.Check(ctx, e.root)
	require.NoError(t, err)

	e.clock.Advance(days(300))
	res, err := e.engine.Check(ctx, e.root)
	require.NoError(t, err)
	assert.Equal(t, pki.StateValid, res.State)

	e.clock.Advance(days(40))
	res, err = e.engine.Check(ctx, e.root)
	require.NoError(t, err)
	assert.Equal(t, pki.StateRenewed, res.State)
}

func TestEngineLongValidity(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	root, err := pki.NewRootIdentity(e.layout, pki.Subject{CommonName: "Century Root"}, 200000)
	require.NoError(t, err)

	res, err := e.engine.Check(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, pki.StateIssued, res.State)
	assert.True(t, res.NotAfter.After(e.clock.Now()))

	res, err = e.engine.Check(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, pki.StateValid, res.State)
}

func TestEngineBackendCalls(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		testFunc func(t *testing.T, backend *mocks.Backend, engine *pki.Engine, root, leaf *pki.Identity)
	}{
		{
			name: "Root is self signed without SAN",
			testFunc: func(t *testing.T, backend *mocks.Backend, engine *pki.Engine, root, _ *pki.Identity) {
				touch(t, root.KeyPath(), "key")
				backend.On("CreateCSR", ctx, root.KeyPath(), root.Subject(), root.CSRPath(), (*pki.SANExtension)(nil)).
					Run(func(mock.Arguments) { touch(t, root.CSRPath(), "csr") }).Return(nil).Once()
				backend.On("SelfSign", ctx, root.CSRPath(), root.KeyPath(), 365, root.CertPath(), (*pki.SANExtension)(nil)).
					Run(func(mock.Arguments) { touch(t, root.CertPath(), "crt") }).Return(nil).Once()
				backend.On("ReadExpiration", ctx, root.CertPath()).Return(time.Now().Add(time.Hour), nil).Once()

				res, err := engine.Check(ctx, root)
				require.NoError(t, err)
				assert.Equal(t, pki.StateIssued, res.State)
				assertNoTempFiles(t, root)
			},
		},
		{
			name: "Leaf request carries SAN config",
			testFunc: func(t *testing.T, backend *mocks.Backend, engine *pki.Engine, root, leaf *pki.Identity) {
				touch(t, leaf.KeyPath(), "key")
				san := &pki.SANExtension{DNSNames: []string{"example.com", "www.example.com"}, ConfigPath: leaf.ConfigPath()}

				backend.On("CreateCSR", ctx, leaf.KeyPath(), leaf.Subject(), leaf.CSRPath(), san).
					Run(func(mock.Arguments) {
						data, err := os.ReadFile(leaf.ConfigPath())
						require.NoError(t, err)
						assert.Contains(t, string(data), `subjectAltName="DNS:example.com,DNS:www.example.com"`)
					}).Return(nil).Once()
				backend.On("CASign", ctx, leaf.CSRPath(), root.AsIssuer(), 30, leaf.CertPath(), san).
					Run(func(mock.Arguments) { touch(t, leaf.CertPath(), "crt") }).Return(nil).Once()
				backend.On("ReadExpiration", ctx, leaf.CertPath()).Return(time.Now().Add(time.Hour), nil).Once()

				_, err := engine.Check(ctx, leaf)
				require.NoError(t, err)
				assertNoTempFiles(t, leaf)
			},
		},
		{
			name: "Signing failure leaves certificate untouched",
			testFunc: func(t *testing.T, backend *mocks.Backend, engine *pki.Engine, root, leaf *pki.Identity) {
				touch(t, leaf.KeyPath(), "key")
				touch(t, leaf.CertPath(), "old")

				backend.On("ReadExpiration", ctx, leaf.CertPath()).Return(time.Now().Add(-time.Hour), nil).Once()
				backend.On("ExtractCSR", ctx, leaf.CertPath(), leaf.KeyPath(), leaf.CSRPath()).
					Run(func(mock.Arguments) { touch(t, leaf.CSRPath(), "csr") }).Return(nil).Once()
				backend.On("CASign", ctx, leaf.CSRPath(), root.AsIssuer(), 30, leaf.CertPath(), mock.Anything).
					Return(pki.ErrBackendFailed).Once()

				_, err := engine.Check(ctx, leaf)
				assert.ErrorIs(t, err, pki.ErrBackendFailed)

				data, err := os.ReadFile(leaf.CertPath())
				require.NoError(t, err)
				assert.Equal(t, "old", string(data))
				assertNoTempFiles(t, leaf)
			},
		},
		{
			name: "Unwritable base folder stops before key generation",
			testFunc: func(t *testing.T, backend *mocks.Backend, _ *pki.Engine, _, _ *pki.Identity) {
				blocker := filepath.Join(t.TempDir(), "blocker")
				touch(t, blocker, "")
				id, err := pki.NewRootIdentity(pki.Layout{BaseFolder: blocker}, pki.Subject{CommonName: "Local Root"}, 365)
				require.NoError(t, err)

				engine := pki.NewEngine(backend, pki.WithKeyBits(testBits))
				_, err = engine.Check(ctx, id)

				var step *pki.StepError
				require.ErrorAs(t, err, &step)
				assert.Equal(t, pki.StepCreateDir, step.Step)
				backend.AssertNotCalled(t, "GenerateKey", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "Unavailable toolkit stops at key generation",
			testFunc: func(t *testing.T, backend *mocks.Backend, engine *pki.Engine, root, _ *pki.Identity) {
				backend.On("GenerateKey", ctx, root.KeyPath(), testBits).Return(pki.ErrBackendUnavailable).Once()

				_, err := engine.Check(ctx, root)
				assert.ErrorIs(t, err, pki.ErrBackendUnavailable)

				var step *pki.StepError
				require.ErrorAs(t, err, &step)
				assert.Equal(t, pki.StepGenerateKey, step.Step)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			backend := new(mocks.Backend)
			engine := pki.NewEngine(backend, pki.WithKeyBits(testBits), pki.WithBaseConfig(""))

			layout := pki.Layout{BaseFolder: dir}
			root, err := pki.NewRootIdentity(layout, pki.Subject{CommonName: "Local Root"}, 365)
			require.NoError(t, err)
			leaf, err := pki.NewLeafIdentity(layout, pki.Subject{CommonName: "example.com"}, 30, root.AsIssuer())
			require.NoError(t, err)
			require.NoError(t, os.MkdirAll(root.Dir(), 0o755))

			tt.testFunc(t, backend, engine, root, leaf)
			backend.AssertExpectations(t)
		})
	}
}
