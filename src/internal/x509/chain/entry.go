// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"io/fs"
	"time"

	x509certs "github.com/H0llyW00dzZ/local-ca/src/internal/x509/certs"
)

// Status classifies a certificate file at inspection time.
type Status string

const (
	StatusValid      Status = "valid"
	StatusRenewalDue Status = "renewal due"
	StatusExpired    Status = "expired"
	StatusMissing    Status = "missing"
	StatusMalformed  Status = "malformed"
)

// Roles of an inspected certificate.
const (
	RoleRoot = "Root CA Certificate"
	RoleLeaf = "End-Entity (Server/Leaf) Certificate"
)

// ChainVerified is the Chain value of a leaf that verifies against its root.
const ChainVerified = "verified"

// Entry summarizes one managed certificate.
type Entry struct {
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	Path               string    `json:"path"`
	Status             Status    `json:"status"`
	Subject            string    `json:"subject,omitempty"`
	Issuer             string    `json:"issuer,omitempty"`
	SerialNumber       string    `json:"serialNumber,omitempty"`
	DNSNames           []string  `json:"dnsNames,omitempty"`
	PublicKeyAlgorithm string    `json:"publicKeyAlgorithm,omitempty"`
	KeySize            int       `json:"keySize,omitempty"`
	NotBefore          time.Time `json:"notBefore,omitzero"`
	NotAfter           time.Time `json:"notAfter,omitzero"`
	// Chain is ChainVerified or the reason a leaf does not verify; empty for the root.
	Chain string `json:"chain,omitempty"`
	Error string `json:"error,omitempty"`
}

// Inspector builds entries from certificate files.
type Inspector struct {
	codec       *x509certs.Certificate
	now         func() time.Time
	renewBefore time.Duration
}

// NewInspector returns an Inspector classifying certificates that expire
// within renewBefore of now as due for renewal. A nil clock means [time.Now].
func NewInspector(renewBefore time.Duration, now func() time.Time) *Inspector {
	if now == nil {
		now = time.Now
	}
	return &Inspector{codec: x509certs.New(), now: now, renewBefore: renewBefore}
}

// Root inspects the authority certificate. The parsed certificate is
// returned for leaf inspection and is nil when the file is unusable.
func (in *Inspector) Root(name, certPath string) (Entry, *x509.Certificate) {
	entry, cert := in.inspect(name, RoleRoot, certPath)
	return entry, cert
}

// Leaf inspects a leaf certificate and verifies it against root.
func (in *Inspector) Leaf(name, certPath string, root *x509.Certificate) Entry {
	entry, cert := in.inspect(name, RoleLeaf, certPath)
	if cert == nil {
		return entry
	}

	if root == nil {
		entry.Chain = ErrIncompleteChain.Error()
		return entry
	}
	if err := New(cert, root).VerifyChain(in.now()); err != nil {
		entry.Chain = err.Error()
		return entry
	}
	entry.Chain = ChainVerified
	return entry
}

func (in *Inspector) inspect(name, role, certPath string) (Entry, *x509.Certificate) {
	entry := Entry{Name: name, Role: role, Path: certPath}

	cert, err := in.codec.ReadFile(certPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		entry.Status = StatusMissing
		return entry, nil
	case err != nil:
		entry.Status = StatusMalformed
		entry.Error = err.Error()
		return entry, nil
	}

	entry.Subject = cert.Subject.CommonName
	entry.Issuer = cert.Issuer.CommonName
	entry.SerialNumber = cert.SerialNumber.String()
	entry.DNSNames = cert.DNSNames
	entry.PublicKeyAlgorithm, entry.KeySize = keyInfo(cert)
	entry.NotBefore = cert.NotBefore
	entry.NotAfter = cert.NotAfter
	entry.Status = in.classify(cert.NotAfter)
	return entry, cert
}

// classify applies the same validity rule as the renewal engine.
func (in *Inspector) classify(notAfter time.Time) Status {
	now := in.now()
	switch {
	case !notAfter.After(now):
		return StatusExpired
	case !notAfter.After(now.Add(in.renewBefore)):
		return StatusRenewalDue
	default:
		return StatusValid
	}
}

func keyInfo(cert *x509.Certificate) (string, int) {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return "RSA", pub.Size() * 8
	case *ecdsa.PublicKey:
		return "ECDSA", pub.Curve.Params().BitSize
	case ed25519.PublicKey:
		return "Ed25519", 256
	default:
		return cert.PublicKeyAlgorithm.String(), 0
	}
}
