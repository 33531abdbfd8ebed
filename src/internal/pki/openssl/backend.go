// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package openssl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/local-ca/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
)

// DefaultBinary is the executable looked up in PATH when none is configured.
const DefaultBinary = "openssl"

// notAfterLayout is how openssl prints validity bounds in -text output.
const notAfterLayout = "Jan _2 15:04:05 2006 MST"

var _ pki.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithBinary sets the openssl executable, either a name resolved through
// PATH or a path.
func WithBinary(binary string) Option {
	return func(b *Backend) {
		if binary != "" {
			b.binary = binary
		}
	}
}

// Backend shells out to openssl. It holds no state besides the binary name.
type Backend struct {
	binary string
}

// New returns an openssl-backed signer.
func New(opts ...Option) *Backend {
	b := &Backend{binary: DefaultBinary}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Binary returns the configured executable.
func (b *Backend) Binary() string { return b.binary }

// Available reports whether the executable can be located.
func (b *Backend) Available() error {
	if _, err := posix.LookupBinary(b.binary); err != nil {
		return fmt.Errorf("%w: %v", pki.ErrBackendUnavailable, err)
	}
	return nil
}

// GenerateKey runs genrsa.
func (b *Backend) GenerateKey(_ context.Context, outPath string, bits int) error {
	out, err := b.run("genrsa", strconv.Itoa(bits))
	if err != nil {
		return err
	}
	return writeFile(outPath, out, 0o600)
}

// CreateCSR runs req -new. For leaves, the SAN section of san.ConfigPath is
// requested as an extension.
func (b *Backend) CreateCSR(_ context.Context, keyPath string, subject pki.Subject, outPath string, san *pki.SANExtension) error {
	args := []string{"req", "-new", "-key", keyPath, "-subj", FormatSubject(subject)}
	if san != nil && san.ConfigPath != "" {
		args = append(args, "-reqexts", pki.SANSection, "-config", san.ConfigPath)
	}

	out, err := b.run(args...)
	if err != nil {
		return err
	}
	return writeFile(outPath, out, 0o644)
}

// ExtractCSR runs x509 -x509toreq.
func (b *Backend) ExtractCSR(_ context.Context, certPath, keyPath, outPath string) error {
	out, err := b.run("x509", "-x509toreq", "-in", certPath, "-signkey", keyPath)
	if err != nil {
		return err
	}
	return writeFile(outPath, out, 0o644)
}

// SelfSign runs x509 -req -signkey. The SAN extension is ignored.
func (b *Backend) SelfSign(_ context.Context, csrPath, keyPath string, days int, outPath string, _ *pki.SANExtension) error {
	out, err := b.run("x509", "-req", "-days", strconv.Itoa(days), "-in", csrPath, "-signkey", keyPath)
	if err != nil {
		return err
	}
	return writeFile(outPath, out, 0o644)
}

// CASign runs x509 -req against the issuer, creating its serial file when needed.
func (b *Backend) CASign(_ context.Context, csrPath string, issuer pki.IssuerRef, days int, outPath string, san *pki.SANExtension) error {
	args := []string{
		"x509", "-req",
		"-days", strconv.Itoa(days),
		"-in", csrPath,
		"-CA", issuer.CertPath,
		"-CAkey", issuer.KeyPath,
		"-CAserial", issuer.SerialPath(),
		"-CAcreateserial",
	}
	if san != nil && san.ConfigPath != "" {
		args = append(args, "-extensions", pki.SANSection, "-extfile", san.ConfigPath)
	}

	out, err := b.run(args...)
	if err != nil {
		return err
	}
	return writeFile(outPath, out, 0o644)
}

// ReadExpiration runs x509 -noout -text and parses the "Not After" line.
func (b *Backend) ReadExpiration(_ context.Context, certPath string) (time.Time, error) {
	if _, err := os.Stat(certPath); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", pki.ErrBackendFailed, err)
	}

	out, err := b.run("x509", "-noout", "-text", "-in", certPath)
	if errors.Is(err, pki.ErrBackendFailed) {
		return time.Time{}, fmt.Errorf("%w: %s: %v", pki.ErrMalformedCertificate, certPath, err)
	}
	if err != nil {
		return time.Time{}, err
	}

	notAfter, err := parseNotAfter(out)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", pki.ErrMalformedCertificate, certPath, err)
	}
	return notAfter, nil
}

// run executes the binary and returns its standard output.
func (b *Backend) run(args ...string) ([]byte, error) {
	path, err := posix.LookupBinary(b.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pki.ErrBackendUnavailable, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: openssl %s exited with %d: %s",
				pki.ErrBackendFailed, args[0], exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: %v", pki.ErrBackendUnavailable, err)
	}
	return stdout.Bytes(), nil
}

// FormatSubject renders a distinguished name for -subj, skipping empty
// fields and escaping characters that openssl treats as separators.
func FormatSubject(s pki.Subject) string {
	fields := []struct{ key, value string }{
		{"C", s.CountryCode},
		{"ST", s.State},
		{"L", s.Locality},
		{"O", s.OrganizationName},
		{"OU", s.OrganizationalUnitName},
		{"CN", s.CommonName},
		{"emailAddress", s.Email},
	}

	var sb strings.Builder
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(f.key)
		sb.WriteByte('=')
		sb.WriteString(subjectEscaper.Replace(f.value))
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

var subjectEscaper = strings.NewReplacer(`\`, `\\`, `/`, `\/`, `+`, `\+`, `=`, `\=`)

func parseNotAfter(text []byte) (time.Time, error) {
	scanner := bufio.NewScanner(bytes.NewReader(text))
	for scanner.Scan() {
		_, value, ok := strings.Cut(scanner.Text(), "Not After")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		value = strings.TrimSpace(strings.TrimPrefix(value, ":"))
		return time.Parse(notAfterLayout, value)
	}
	if err := scanner.Err(); err != nil {
		return time.Time{}, err
	}
	return time.Time{}, errors.New("no Not After line in certificate text")
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("%w: write %s: %v", pki.ErrBackendFailed, path, err)
	}
	return nil
}
