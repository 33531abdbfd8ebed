// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/x509"
	"errors"
	"fmt"
	"sync"
	"time"

	x509certs "github.com/H0llyW00dzZ/local-ca/src/internal/x509/certs"
)

// ErrIncompleteChain is returned when a chain has no root to verify against.
var ErrIncompleteChain = errors.New("x509chain: chain has no root certificate")

// Chain manages an issued [X.509] leaf and its issuing root.
//
// [X.509]: https://grokipedia.com/page/X.509
type Chain struct {
	mu    sync.RWMutex
	Certs []*x509.Certificate
	*x509certs.Certificate
	Roots *x509.CertPool
}

// New creates a chain from certificates ordered leaf first, root last.
func New(certs ...*x509.Certificate) *Chain {
	return &Chain{
		Certs:       certs,
		Certificate: x509certs.New(),
		Roots:       x509.NewCertPool(),
	}
}

// Load reads a leaf and its root from PEM or DER files.
func Load(leafPath, rootPath string) (*Chain, error) {
	codec := x509certs.New()

	leaf, err := codec.ReadFile(leafPath)
	if err != nil {
		return nil, fmt.Errorf("read leaf %s: %w", leafPath, err)
	}
	root, err := codec.ReadFile(rootPath)
	if err != nil {
		return nil, fmt.Errorf("read root %s: %w", rootPath, err)
	}
	return New(leaf, root), nil
}

// Leaf returns the first certificate of the chain.
func (ch *Chain) Leaf() *x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return nil
	}
	return ch.Certs[0]
}

// Root returns the last certificate when it is self-signed.
func (ch *Chain) Root() *x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) < 2 {
		return nil
	}
	last := ch.Certs[len(ch.Certs)-1]
	if !ch.IsRootNode(last) {
		return nil
	}
	return last
}

// IsSelfSigned checks if a certificate is signed by its own key.
func (ch *Chain) IsSelfSigned(cert *x509.Certificate) bool {
	return cert.CheckSignatureFrom(cert) == nil
}

// IsRootNode determines if a certificate is a root node in the chain.
func (ch *Chain) IsRootNode(cert *x509.Certificate) bool {
	return cert.IsCA && ch.IsSelfSigned(cert)
}

// VerifyChain checks that the leaf chains to the root and that every
// certificate is valid at the given instant. Any extended key usage is
// accepted, since local leaves serve both clients and servers.
//
// The original verification error is returned so callers see the precise
// cause (expiry, unknown authority, bad signature).
func (ch *Chain) VerifyChain(at time.Time) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if len(ch.Certs) < 2 {
		return ErrIncompleteChain
	}

	intermediates := x509.NewCertPool()
	for i, cert := range ch.Certs[1:] {
		if i == len(ch.Certs)-2 {
			ch.Roots.AddCert(cert)
		} else {
			intermediates.AddCert(cert)
		}
	}

	_, err := ch.Certs[0].Verify(x509.VerifyOptions{
		Roots:         ch.Roots,
		Intermediates: intermediates,
		CurrentTime:   at,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	return err
}

// Verify loads the leaf and root files and verifies the chain at the given instant.
func Verify(leafPath, rootPath string, at time.Time) error {
	ch, err := Load(leafPath, rootPath)
	if err != nil {
		return err
	}
	return ch.VerifyChain(at)
}
