// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package native

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
	x509certs "github.com/H0llyW00dzZ/local-ca/src/internal/x509/certs"
)

var (
	oidCountry            = asn1.ObjectIdentifier{2, 5, 4, 6}
	oidProvince           = asn1.ObjectIdentifier{2, 5, 4, 8}
	oidLocality           = asn1.ObjectIdentifier{2, 5, 4, 7}
	oidOrganization       = asn1.ObjectIdentifier{2, 5, 4, 10}
	oidOrganizationalUnit = asn1.ObjectIdentifier{2, 5, 4, 11}
	oidCommonName         = asn1.ObjectIdentifier{2, 5, 4, 3}
	oidEmailAddress       = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
)

// serialLimit bounds random serial numbers to 128 bits.
var serialLimit = new(big.Int).Lsh(big.NewInt(1), 128)

var _ pki.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithClock overrides the time source used for NotBefore/NotAfter.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithRandom overrides the entropy source.
func WithRandom(r io.Reader) Option {
	return func(b *Backend) { b.rand = r }
}

// Backend performs every operation in-process with crypto/x509.
//
// Outputs are fully built in memory before being written, so a failed
// operation never leaves a truncated file behind.
type Backend struct {
	codec *x509certs.Certificate
	rand  io.Reader
	now   func() time.Time
}

// New returns an in-process signing backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		codec: x509certs.New(),
		rand:  rand.Reader,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GenerateKey writes a PKCS#1 RSA key with mode 0600.
func (b *Backend) GenerateKey(_ context.Context, outPath string, bits int) error {
	key, err := rsa.GenerateKey(b.rand, bits)
	if err != nil {
		return failed("generate %d-bit RSA key: %v", bits, err)
	}

	data, err := b.codec.EncodeKeyPEM(key)
	if err != nil {
		return failed("encode key: %v", err)
	}
	return writeFile(outPath, data, 0o600)
}

// CreateCSR builds a request whose subject lists the non-empty fields in
// C, ST, L, O, OU, CN, emailAddress order.
func (b *Backend) CreateCSR(_ context.Context, keyPath string, subject pki.Subject, outPath string, san *pki.SANExtension) error {
	key, err := b.readKey(keyPath)
	if err != nil {
		return err
	}

	raw, err := asn1.Marshal(subjectSequence(subject))
	if err != nil {
		return failed("encode subject: %v", err)
	}

	der, err := x509.CreateCertificateRequest(b.rand, &x509.CertificateRequest{
		RawSubject: raw,
		DNSNames:   dnsNames(san),
	}, key)
	if err != nil {
		return failed("create request: %v", err)
	}

	return writeFile(outPath, b.codec.EncodeRequestPEM(der), 0o644)
}

// ExtractCSR copies the certificate subject verbatim into a new request
// signed by the key at keyPath. Extensions are not carried over.
func (b *Backend) ExtractCSR(_ context.Context, certPath, keyPath, outPath string) error {
	cert, err := b.codec.ReadFile(certPath)
	if err != nil {
		return failed("read certificate %s: %v", certPath, err)
	}
	key, err := b.readKey(keyPath)
	if err != nil {
		return err
	}

	der, err := x509.CreateCertificateRequest(b.rand, &x509.CertificateRequest{
		RawSubject: cert.RawSubject,
	}, key)
	if err != nil {
		return failed("create request: %v", err)
	}

	return writeFile(outPath, b.codec.EncodeRequestPEM(der), 0o644)
}

// SelfSign issues an authority certificate: the request subject becomes
// both subject and issuer and the public key is taken from keyPath.
func (b *Backend) SelfSign(_ context.Context, csrPath, keyPath string, days int, outPath string, san *pki.SANExtension) error {
	csr, err := b.readRequest(csrPath)
	if err != nil {
		return err
	}
	key, err := b.readKey(keyPath)
	if err != nil {
		return err
	}
	serial, err := rand.Int(b.rand, serialLimit)
	if err != nil {
		return failed("generate serial: %v", err)
	}

	tmpl := b.template(csr, serial, days, san)
	tmpl.IsCA = true
	tmpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature

	der, err := x509.CreateCertificate(b.rand, tmpl, tmpl, key.Public(), key)
	if err != nil {
		return failed("self sign: %v", err)
	}

	return writeFile(outPath, b.codec.EncodeDERAsPEM(der), 0o644)
}

// CASign issues a leaf certificate for the request's public key, signed by
// the issuer. The issuer serial file is advanced, or created with a random
// serial when absent.
func (b *Backend) CASign(_ context.Context, csrPath string, issuer pki.IssuerRef, days int, outPath string, san *pki.SANExtension) error {
	csr, err := b.readRequest(csrPath)
	if err != nil {
		return err
	}
	issuerKey, err := b.readKey(issuer.KeyPath)
	if err != nil {
		return err
	}
	issuerCert, err := b.codec.ReadFile(issuer.CertPath)
	if err != nil {
		return failed("read issuer certificate %s: %v", issuer.CertPath, err)
	}

	serial, err := b.nextSerial(issuer.SerialPath())
	if err != nil {
		return err
	}

	tmpl := b.template(csr, serial, days, san)
	tmpl.KeyUsage = x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment
	tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth}

	der, err := x509.CreateCertificate(b.rand, tmpl, issuerCert, csr.PublicKey, issuerKey)
	if err != nil {
		return failed("ca sign: %v", err)
	}

	if err := writeSerial(issuer.SerialPath(), serial); err != nil {
		return err
	}
	return writeFile(outPath, b.codec.EncodeDERAsPEM(der), 0o644)
}

// ReadExpiration returns the certificate NotAfter.
func (b *Backend) ReadExpiration(_ context.Context, certPath string) (time.Time, error) {
	data, err := os.ReadFile(certPath)
	if err != nil {
		return time.Time{}, failed("read certificate %s: %v", certPath, err)
	}

	cert, err := b.codec.Decode(data)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", pki.ErrMalformedCertificate, certPath, err)
	}
	return cert.NotAfter, nil
}

func (b *Backend) template(csr *x509.CertificateRequest, serial *big.Int, days int, san *pki.SANExtension) *x509.Certificate {
	now := b.now()
	return &x509.Certificate{
		SerialNumber:          serial,
		RawSubject:            csr.RawSubject,
		NotBefore:             now,
		NotAfter:              now.AddDate(0, 0, days),
		BasicConstraintsValid: true,
		DNSNames:              dnsNames(san),
	}
}

func (b *Backend) readKey(path string) (crypto.Signer, error) {
	key, err := b.codec.ReadKeyFile(path)
	if err != nil {
		return nil, failed("read key %s: %v", path, err)
	}
	return key, nil
}

func (b *Backend) readRequest(path string) (*x509.CertificateRequest, error) {
	csr, err := b.codec.ReadRequestFile(path)
	if err != nil {
		return nil, failed("read request %s: %v", path, err)
	}
	return csr, nil
}

// nextSerial follows openssl's serial file convention: one hex number per
// file, incremented on every issue.
func (b *Backend) nextSerial(path string) (*big.Int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		serial, err := rand.Int(b.rand, serialLimit)
		if err != nil {
			return nil, failed("generate serial: %v", err)
		}
		return serial.Add(serial, big.NewInt(1)), nil
	}
	if err != nil {
		return nil, failed("read serial file %s: %v", path, err)
	}

	serial, ok := new(big.Int).SetString(strings.TrimSpace(string(data)), 16)
	if !ok {
		return nil, failed("serial file %s: not a hex number", path)
	}
	return serial.Add(serial, big.NewInt(1)), nil
}

func writeSerial(path string, serial *big.Int) error {
	return writeFile(path, []byte(strings.ToUpper(serial.Text(16))+"\n"), 0o644)
}

func subjectSequence(s pki.Subject) pkix.RDNSequence {
	var seq pkix.RDNSequence
	add := func(oid asn1.ObjectIdentifier, value any, present bool) {
		if present {
			seq = append(seq, pkix.RelativeDistinguishedNameSET{{Type: oid, Value: value}})
		}
	}

	add(oidCountry, s.CountryCode, s.CountryCode != "")
	add(oidProvince, s.State, s.State != "")
	add(oidLocality, s.Locality, s.Locality != "")
	add(oidOrganization, s.OrganizationName, s.OrganizationName != "")
	add(oidOrganizationalUnit, s.OrganizationalUnitName, s.OrganizationalUnitName != "")
	add(oidCommonName, s.CommonName, s.CommonName != "")
	// emailAddress is an IA5String.
	add(oidEmailAddress, asn1.RawValue{Tag: asn1.TagIA5String, Bytes: []byte(s.Email)}, s.Email != "")

	return seq
}

func dnsNames(san *pki.SANExtension) []string {
	if san == nil {
		return nil
	}
	return san.DNSNames
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return failed("write %s: %v", path, err)
	}
	return nil
}

func failed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", pki.ErrBackendFailed, fmt.Sprintf(format, args...))
}
