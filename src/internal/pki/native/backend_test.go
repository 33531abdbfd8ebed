// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package native_test

import (
	"context"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki/native"
	x509certs "github.com/H0llyW00dzZ/local-ca/src/internal/x509/certs"
)

// testBits keeps key generation fast; production uses pki.KeyBits.
const testBits = 2048

var (
	fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rootSubject = pki.Subject{
		CountryCode:            "IT",
		State:                  "Lazio",
		Locality:               "Rome",
		OrganizationName:       "Example",
		OrganizationalUnitName: "PKI",
		CommonName:             "Example Root",
		Email:                  "pki@example.com",
	}
	leafSubject = pki.Subject{
		CountryCode:      "IT",
		OrganizationName: "Example",
		CommonName:       "example.com",
		Email:            "ops@example.com",
	}
)

type fixture struct {
	dir     string
	backend *native.Backend
	codec   *x509certs.Certificate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		dir:     t.TempDir(),
		backend: native.New(native.WithClock(func() time.Time { return fixedNow })),
		codec:   x509certs.New(),
	}
}

func (f *fixture) path(name string) string { return filepath.Join(f.dir, name) }

// issueRoot creates ca.key and ca.crt.
func (f *fixture) issueRoot(t *testing.T, days int) pki.IssuerRef {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.backend.GenerateKey(ctx, f.path("ca.key"), testBits))
	require.NoError(t, f.backend.CreateCSR(ctx, f.path("ca.key"), rootSubject, f.path("ca.csr"), nil))
	require.NoError(t, f.backend.SelfSign(ctx, f.path("ca.csr"), f.path("ca.key"), days, f.path("ca.crt"), nil))

	return pki.IssuerRef{KeyPath: f.path("ca.key"), CertPath: f.path("ca.crt")}
}

func (f *fixture) issueLeaf(t *testing.T, issuer pki.IssuerRef) *x509.Certificate {
	t.Helper()
	ctx := context.Background()
	san := &pki.SANExtension{DNSNames: []string{"example.com", "www.example.com"}}

	if _, err := os.Stat(f.path("example.com.key")); err != nil {
		require.NoError(t, f.backend.GenerateKey(ctx, f.path("example.com.key"), testBits))
	}
	require.NoError(t, f.backend.CreateCSR(ctx, f.path("example.com.key"), leafSubject, f.path("example.com.csr"), san))
	require.NoError(t, f.backend.CASign(ctx, f.path("example.com.csr"), issuer, 30, f.path("example.com.crt"), san))

	cert, err := f.codec.ReadFile(f.path("example.com.crt"))
	require.NoError(t, err)
	return cert
}

func TestGenerateKey(t *testing.T) {
	f := newFixture(t)
	path := f.path("k.key")

	require.NoError(t, f.backend.GenerateKey(context.Background(), path, testBits))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	key, err := f.codec.ReadKeyFile(path)
	require.NoError(t, err)
	assert.Equal(t, testBits/8, key.Public().(interface{ Size() int }).Size())
}

func TestSelfSign(t *testing.T) {
	f := newFixture(t)
	f.issueRoot(t, 365)

	root, err := f.codec.ReadFile(f.path("ca.crt"))
	require.NoError(t, err)

	assert.True(t, root.IsCA)
	assert.Equal(t, root.RawSubject, root.RawIssuer)
	assert.NoError(t, root.CheckSignatureFrom(root))
	assert.Equal(t, "Example Root", root.Subject.CommonName)
	assert.Equal(t, []string{"IT"}, root.Subject.Country)
	assert.Equal(t, []string{"Lazio"}, root.Subject.Province)
	assert.True(t, root.NotBefore.Equal(fixedNow))
	assert.True(t, root.NotAfter.Equal(fixedNow.Add(365*24*time.Hour)))
	assert.Empty(t, root.DNSNames)
	assert.Equal(t, "pki@example.com", attribute(root.Subject.Names, oidEmailAddress))
}

var oidEmailAddress = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}

func attribute(names []pkix.AttributeTypeAndValue, oid asn1.ObjectIdentifier) any {
	for _, atv := range names {
		if atv.Type.Equal(oid) {
			return atv.Value
		}
	}
	return nil
}

func TestCASign(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T, f *fixture, issuer pki.IssuerRef)
	}{
		{
			name: "Leaf chains to root",
			testFunc: func(t *testing.T, f *fixture, issuer pki.IssuerRef) {
				leaf := f.issueLeaf(t, issuer)
				root, err := f.codec.ReadFile(issuer.CertPath)
				require.NoError(t, err)

				assert.False(t, leaf.IsCA)
				assert.Equal(t, root.RawSubject, leaf.RawIssuer)
				assert.NoError(t, leaf.CheckSignatureFrom(root))
				assert.Equal(t, []string{"example.com", "www.example.com"}, leaf.DNSNames)

				pool := x509.NewCertPool()
				pool.AddCert(root)
				_, err = leaf.Verify(x509.VerifyOptions{
					Roots:       pool,
					DNSName:     "www.example.com",
					CurrentTime: fixedNow.Add(time.Hour),
				})
				assert.NoError(t, err)
			},
		},
		{
			name: "Serial file created then advanced",
			testFunc: func(t *testing.T, f *fixture, issuer pki.IssuerRef) {
				_, err := os.Stat(issuer.SerialPath())
				require.ErrorIs(t, err, os.ErrNotExist)

				first := f.issueLeaf(t, issuer)
				data, err := os.ReadFile(issuer.SerialPath())
				require.NoError(t, err)
				stored, ok := new(big.Int).SetString(strings.TrimSpace(string(data)), 16)
				require.True(t, ok)
				assert.Equal(t, 0, first.SerialNumber.Cmp(stored))

				second := f.issueLeaf(t, issuer)
				want := new(big.Int).Add(first.SerialNumber, big.NewInt(1))
				assert.Equal(t, 0, second.SerialNumber.Cmp(want))
			},
		},
		{
			name: "Missing issuer fails",
			testFunc: func(t *testing.T, f *fixture, _ pki.IssuerRef) {
				ctx := context.Background()
				require.NoError(t, f.backend.GenerateKey(ctx, f.path("orphan.key"), testBits))
				require.NoError(t, f.backend.CreateCSR(ctx, f.path("orphan.key"), leafSubject, f.path("orphan.csr"), nil))

				missing := pki.IssuerRef{KeyPath: f.path("none.key"), CertPath: f.path("none.crt")}
				err := f.backend.CASign(ctx, f.path("orphan.csr"), missing, 30, f.path("orphan.crt"), nil)

				assert.ErrorIs(t, err, pki.ErrBackendFailed)
				assert.NoFileExists(t, f.path("orphan.crt"))
			},
		},
		{
			name: "Corrupt serial file fails without writing",
			testFunc: func(t *testing.T, f *fixture, issuer pki.IssuerRef) {
				require.NoError(t, os.WriteFile(issuer.SerialPath(), []byte("zz\n"), 0o644))
				ctx := context.Background()
				require.NoError(t, f.backend.GenerateKey(ctx, f.path("x.key"), testBits))
				require.NoError(t, f.backend.CreateCSR(ctx, f.path("x.key"), leafSubject, f.path("x.csr"), nil))

				err := f.backend.CASign(ctx, f.path("x.csr"), issuer, 30, f.path("x.crt"), nil)
				assert.ErrorIs(t, err, pki.ErrBackendFailed)
				assert.NoFileExists(t, f.path("x.crt"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			issuer := f.issueRoot(t, 365)
			tt.testFunc(t, f, issuer)
		})
	}
}

func TestExtractCSR(t *testing.T) {
	f := newFixture(t)
	issuer := f.issueRoot(t, 365)
	leaf := f.issueLeaf(t, issuer)
	ctx := context.Background()

	require.NoError(t, f.backend.ExtractCSR(ctx, f.path("example.com.crt"), f.path("example.com.key"), f.path("again.csr")))

	csr, err := f.codec.ReadRequestFile(f.path("again.csr"))
	require.NoError(t, err)
	assert.Equal(t, leaf.RawSubject, csr.RawSubject)
	assert.Empty(t, csr.DNSNames, "extensions are not copied into extracted requests")
}

func TestReadExpiration(t *testing.T) {
	f := newFixture(t)
	f.issueRoot(t, 10)
	ctx := context.Background()

	notAfter, err := f.backend.ReadExpiration(ctx, f.path("ca.crt"))
	require.NoError(t, err)
	assert.True(t, notAfter.Equal(fixedNow.Add(10*24*time.Hour)))

	require.NoError(t, os.WriteFile(f.path("bad.crt"), []byte("garbage"), 0o644))
	_, err = f.backend.ReadExpiration(ctx, f.path("bad.crt"))
	assert.ErrorIs(t, err, pki.ErrMalformedCertificate)

	_, err = f.backend.ReadExpiration(ctx, f.path("missing.crt"))
	assert.ErrorIs(t, err, pki.ErrBackendFailed)
}

func TestLongValidity(t *testing.T) {
	f := newFixture(t)
	f.issueRoot(t, 200000)

	notAfter, err := f.backend.ReadExpiration(context.Background(), f.path("ca.crt"))
	require.NoError(t, err)
	assert.True(t, notAfter.Equal(fixedNow.AddDate(0, 0, 200000)))
	assert.True(t, notAfter.After(fixedNow.AddDate(500, 0, 0)))
}

func TestCreateCSRMissingKey(t *testing.T) {
	f := newFixture(t)
	err := f.backend.CreateCSR(context.Background(), f.path("none.key"), leafSubject, f.path("x.csr"), nil)
	assert.ErrorIs(t, err, pki.ErrBackendFailed)
	assert.NoFileExists(t, f.path("x.csr"))
}
