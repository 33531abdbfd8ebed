// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pki

import (
	"context"
	"time"
)

// KeyBits is the RSA modulus size of every generated key.
const KeyBits = 4096

// SANExtension describes the Subject Alternative Names to embed in a
// request or certificate.
//
// ConfigPath names an openssl-style extension config containing a [SAN]
// section with the same names; backends that do not read config files use
// DNSNames directly.
type SANExtension struct {
	DNSNames   []string
	ConfigPath string
}

// Backend is the cryptographic toolkit the engine delegates to.
//
// Every method blocks until the operation is complete and reports a single
// success or failure. Failures wrap [ErrBackendUnavailable] when the
// toolkit cannot be invoked and [ErrBackendFailed] when it ran and
// failed. A failed operation must not leave a partially written output file.
type Backend interface {
	// GenerateKey writes a new RSA private key of the given size to outPath.
	GenerateKey(ctx context.Context, outPath string, bits int) error

	// CreateCSR writes a signing request for subject, signed by the key at keyPath.
	CreateCSR(ctx context.Context, keyPath string, subject Subject, outPath string, san *SANExtension) error

	// ExtractCSR derives a signing request from an existing certificate,
	// re-signed with the key at keyPath.
	ExtractCSR(ctx context.Context, certPath, keyPath, outPath string) error

	// SelfSign issues a certificate for the request at csrPath, signed by its own key.
	SelfSign(ctx context.Context, csrPath, keyPath string, days int, outPath string, san *SANExtension) error

	// CASign issues a certificate for the request at csrPath, signed by issuer.
	// The issuer serial file is created when absent.
	CASign(ctx context.Context, csrPath string, issuer IssuerRef, days int, outPath string, san *SANExtension) error

	// ReadExpiration returns the NotAfter instant of the certificate at certPath.
	// Unreadable certificates yield [ErrMalformedCertificate].
	ReadExpiration(ctx context.Context, certPath string) (time.Time, error)
}
