// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
	"github.com/cloudflare/cfssl/helpers"
)

// PEM block types written by this package.
const (
	BlockCertificate        = "CERTIFICATE"
	BlockCertificateRequest = "CERTIFICATE REQUEST"
	BlockRSAPrivateKey      = "RSA PRIVATE KEY"
	BlockECPrivateKey       = "EC PRIVATE KEY"
	BlockPrivateKey         = "PRIVATE KEY"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrParsePrivateKey indicates that a private key could not be decoded.
	ErrParsePrivateKey = errors.New("x509certs: failed to parse private key")

	// ErrParseRequest indicates that a certificate signing request could not be decoded
	// or its self-signature does not verify.
	ErrParseRequest = errors.New("x509certs: failed to parse certificate request")

	// ErrUnsupportedKey indicates a private key type this package cannot encode.
	ErrUnsupportedKey = errors.New("x509certs: unsupported private key type")
)

// Certificate provides methods to decode and encode [X.509] certificates,
// private keys and certificate signing requests.
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Certificate struct {
	certBlockType string
}

// New creates a new Certificate with default settings.
func New() *Certificate {
	return &Certificate{
		certBlockType: BlockCertificate,
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Certificate) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// decodePEMBlock decodes a PEM block and checks its type.
func (c *Certificate) decodePEMBlock(data []byte) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != c.certBlockType {
		return nil, ErrInvalidBlockType
	}
	return block, nil
}

// Decode decodes a single certificate from PEM, DER or PKCS#7 data.
func (c *Certificate) Decode(data []byte) (*x509.Certificate, error) {
	if c.IsPEM(data) {
		block, err := c.decodePEMBlock(data)
		if err != nil {
			return nil, err
		}

		data = block.Bytes
	}

	cert, err := x509.ParseCertificate(data)
	if err == nil {
		return cert, nil
	}

	// Some toolkits hand back a degenerate PKCS#7 bundle instead of a bare certificate.
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParsePKCS7
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}

	return p.Content.SignedData.Certificates[0], nil
}

// ReadFile reads and decodes the certificate stored at path.
func (c *Certificate) ReadFile(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.Decode(data)
}

// EncodePEM encodes a certificate to PEM format.
func (c *Certificate) EncodePEM(cert *x509.Certificate) []byte {
	return c.EncodeDERAsPEM(cert.Raw)
}

// EncodeDERAsPEM wraps raw certificate DER bytes in a PEM block.
func (c *Certificate) EncodeDERAsPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  c.certBlockType,
		Bytes: der,
	})
}

// DecodeKey decodes a PEM private key in PKCS#1, SEC 1 or PKCS#8 form.
func (c *Certificate) DecodeKey(data []byte) (crypto.Signer, error) {
	key, err := helpers.ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsePrivateKey, err)
	}
	return key, nil
}

// ReadKeyFile reads and decodes the private key stored at path.
func (c *Certificate) ReadKeyFile(path string) (crypto.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.DecodeKey(data)
}

// EncodeKeyPEM encodes a private key using the block type openssl would
// pick for it: PKCS#1 for RSA, SEC 1 for ECDSA and PKCS#8 otherwise.
func (c *Certificate) EncodeKeyPEM(key crypto.Signer) ([]byte, error) {
	var block *pem.Block

	switch k := key.(type) {
	case *rsa.PrivateKey:
		block = &pem.Block{Type: BlockRSAPrivateKey, Bytes: x509.MarshalPKCS1PrivateKey(k)}
	case *ecdsa.PrivateKey:
		der, err := x509.MarshalECPrivateKey(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedKey, err)
		}
		block = &pem.Block{Type: BlockECPrivateKey, Bytes: der}
	default:
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedKey, err)
		}
		block = &pem.Block{Type: BlockPrivateKey, Bytes: der}
	}

	return pem.EncodeToMemory(block), nil
}

// DecodeRequest decodes a PEM certificate signing request and verifies its signature.
func (c *Certificate) DecodeRequest(data []byte) (*x509.CertificateRequest, error) {
	csr, err := helpers.ParseCSRPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseRequest, err)
	}
	if err := csr.CheckSignature(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseRequest, err)
	}
	return csr, nil
}

// ReadRequestFile reads and decodes the signing request stored at path.
func (c *Certificate) ReadRequestFile(path string) (*x509.CertificateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.DecodeRequest(data)
}

// EncodeRequestPEM wraps raw CSR DER bytes in a PEM block.
func (c *Certificate) EncodeRequestPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  BlockCertificateRequest,
		Bytes: der,
	})
}
