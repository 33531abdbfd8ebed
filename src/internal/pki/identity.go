// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pki

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RootName is the artifact name of the self-signed authority.
const RootName = "ca"

// Artifact file extensions.
const (
	ExtKey    = ".key"
	ExtCert   = ".crt"
	ExtCSR    = ".csr"
	ExtConfig = ".cnf"
	ExtSerial = ".srl"
)

// Subject holds the distinguished-name fields of a certificate.
type Subject struct {
	CountryCode            string
	State                  string
	Locality               string
	OrganizationName       string
	OrganizationalUnitName string
	CommonName             string
	Email                  string
}

// IssuerRef points at an authority's materialized key and certificate.
type IssuerRef struct {
	KeyPath  string
	CertPath string
}

// SerialPath returns the serial-number file kept next to the issuer
// certificate, named the way openssl -CAcreateserial names it.
func (r IssuerRef) SerialPath() string {
	return strings.TrimSuffix(r.CertPath, filepath.Ext(r.CertPath)) + ExtSerial
}

// Layout derives where artifacts live on disk.
//
// Artifacts are stored in <BaseFolder>/certificates, optionally in a
// subfolder named after the part of the artifact name before its first dot.
type Layout struct {
	BaseFolder    string
	UseSubfolders bool
}

// Dir returns the directory holding the artifacts of name.
func (l Layout) Dir(name string) string {
	dir := filepath.Join(l.BaseFolder, "certificates")
	if l.UseSubfolders {
		dir = filepath.Join(dir, beforeFirstDot(name))
	}
	return dir
}

// Base returns the storage base path (without extension) of name.
func (l Layout) Base(name string) string {
	return filepath.Join(l.Dir(name), name)
}

// ExpandName turns a common name into a file-system friendly artifact
// name. A leading wildcard label becomes "wildcard".
func ExpandName(commonName string) string {
	if strings.HasPrefix(commonName, "*") {
		return strings.Replace(commonName, "*", "wildcard", 1)
	}
	return commonName
}

func beforeFirstDot(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// Identity is one managed certificate: either the root authority or a leaf
// issued by it. It is immutable once constructed.
type Identity struct {
	name     string
	base     string
	subject  Subject
	validFor int
	issuer   *IssuerRef
}

// NewRootIdentity constructs the self-signed authority identity and creates
// its directory.
func NewRootIdentity(layout Layout, subject Subject, validFor int) (*Identity, error) {
	return newIdentity(layout, RootName, subject, validFor, nil)
}

// NewLeafIdentity constructs a leaf identity issued by issuer and creates
// its directory. The artifact name is derived from the common name.
func NewLeafIdentity(layout Layout, subject Subject, validFor int, issuer IssuerRef) (*Identity, error) {
	if subject.CommonName == "" {
		return nil, fmt.Errorf("%w: leaf without common name", ErrInvalidIdentity)
	}
	if issuer.KeyPath == "" || issuer.CertPath == "" {
		return nil, fmt.Errorf("%w: leaf %q without issuer", ErrInvalidIdentity, subject.CommonName)
	}
	return newIdentity(layout, ExpandName(subject.CommonName), subject, validFor, &issuer)
}

func newIdentity(layout Layout, name string, subject Subject, validFor int, issuer *IssuerRef) (*Identity, error) {
	if validFor <= 0 {
		return nil, fmt.Errorf("%w: %q valid_for must be positive, got %d", ErrInvalidIdentity, name, validFor)
	}

	dir, err := filepath.Abs(layout.Dir(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return &Identity{
		name:     name,
		base:     filepath.Join(dir, name),
		subject:  subject,
		validFor: validFor,
		issuer:   issuer,
	}, nil
}

// Dir returns the directory holding every artifact of the identity.
func (id *Identity) Dir() string { return filepath.Dir(id.base) }

// Name returns the artifact name ("ca" for the root).
func (id *Identity) Name() string { return id.name }

// Base returns the storage base path shared by every artifact.
func (id *Identity) Base() string { return id.base }

func (id *Identity) KeyPath() string    { return id.base + ExtKey }
func (id *Identity) CertPath() string   { return id.base + ExtCert }
func (id *Identity) CSRPath() string    { return id.base + ExtCSR }
func (id *Identity) ConfigPath() string { return id.base + ExtConfig }

// Subject returns a copy of the subject fields.
func (id *Identity) Subject() Subject { return id.subject }

// ValidFor returns the lifetime in days of a newly issued certificate.
func (id *Identity) ValidFor() int { return id.validFor }

// IsRoot reports whether the identity is self-signed.
func (id *Identity) IsRoot() bool { return id.issuer == nil }

// Issuer returns the issuing authority and false for the root.
func (id *Identity) Issuer() (IssuerRef, bool) {
	if id.issuer == nil {
		return IssuerRef{}, false
	}
	return *id.issuer, true
}

// AsIssuer returns a reference other identities can be issued from.
func (id *Identity) AsIssuer() IssuerRef {
	return IssuerRef{KeyPath: id.KeyPath(), CertPath: id.CertPath()}
}

// SANNames returns the DNS names injected into a leaf certificate: the
// common name and its www. variant. The root carries none.
func (id *Identity) SANNames() []string {
	if id.IsRoot() {
		return nil
	}
	cn := id.subject.CommonName
	return []string{cn, "www." + cn}
}
