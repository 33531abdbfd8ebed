// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pki

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/H0llyW00dzZ/local-ca/src/logger"
)

// State is the outcome of one Check.
type State int

const (
	// StateValid means the certificate was within its validity window; nothing was written.
	StateValid State = iota
	// StateIssued means no certificate existed and one was issued.
	StateIssued
	// StateRenewed means an expired certificate was replaced.
	StateRenewed
	// StateKeyRotated means a new key was generated and the certificate reissued for it.
	StateKeyRotated
)

func (s State) String() string {
	switch s {
	case StateIssued:
		return "issued"
	case StateRenewed:
		return "renewed"
	case StateKeyRotated:
		return "key rotated"
	default:
		return "valid"
	}
}

// Result describes what Check did to one identity.
type Result struct {
	Name         string
	State        State
	KeyGenerated bool
	NotAfter     time.Time
}

// Changed reports whether the certificate file was rewritten.
func (r Result) Changed() bool { return r.State != StateValid }

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for validity checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRenewBefore renews certificates that expire within d instead of
// waiting until they have expired. Zero keeps strict expiry semantics.
func WithRenewBefore(d time.Duration) Option {
	return func(e *Engine) { e.renewBefore = d }
}

// WithBaseConfig sets the openssl config that SAN extension configs extend.
func WithBaseConfig(path string) Option {
	return func(e *Engine) { e.baseConfig = path }
}

// WithKeyBits overrides the RSA modulus size of generated keys.
func WithKeyBits(bits int) Option {
	return func(e *Engine) { e.keyBits = bits }
}

// WithLogger sets the logger for step-by-step progress messages.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine keeps one identity's key and certificate current.
//
// It holds no per-identity state; everything is re-read from disk on every
// call to Check. An Engine must not be used to check identities that share
// artifacts concurrently.
type Engine struct {
	backend     Backend
	log         logger.Logger
	now         func() time.Time
	renewBefore time.Duration
	baseConfig  string
	keyBits     int
}

// NewEngine returns an Engine that delegates cryptography to backend.
func NewEngine(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		backend:    backend,
		log:        logger.NewSilentLogger(),
		now:        time.Now,
		baseConfig: DefaultBaseConfig,
		keyBits:    KeyBits,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check ensures id has a key and a certificate valid past now.
//
// A missing key is generated. A missing, expired, or (with a renewal
// margin) soon-to-expire certificate is reissued, as is any certificate
// whose key was just generated. The temporary signing request and SAN
// config are removed before Check returns, whether or not it succeeded.
//
// Any error is a *StepError naming the failed step; the certificate file
// is left as it was before the failing step.
func (e *Engine) Check(ctx context.Context, id *Identity) (Result, error) {
	res := Result{Name: id.Name()}
	e.log.Infof("Checking certificate %s...", id.CertPath())

	if !exists(id.KeyPath()) {
		if err := os.MkdirAll(id.Dir(), 0o755); err != nil {
			return res, e.fail(StepCreateDir, id.Dir(), err)
		}
		if err := e.backend.GenerateKey(ctx, id.KeyPath(), e.keyBits); err != nil {
			return res, e.fail(StepGenerateKey, id.KeyPath(), err)
		}
		res.KeyGenerated = true
		e.log.Infof("Private key for '%s' generated.", id.KeyPath())
	}

	hadCert := exists(id.CertPath())
	if hadCert {
		notAfter, err := e.backend.ReadExpiration(ctx, id.CertPath())
		if err != nil {
			return res, e.fail(StepReadExpiration, id.CertPath(), err)
		}
		res.NotAfter = notAfter

		if notAfter.After(e.now().Add(e.renewBefore)) && !res.KeyGenerated {
			e.log.Infof("Certificate '%s' is still valid. Nothing to be done.", id.CertPath())
			return res, nil
		}
	}

	switch {
	case res.KeyGenerated && hadCert:
		res.State = StateKeyRotated
		e.log.Infof("Certificate '%s' does not match the new key. It will be reissued.", id.CertPath())
	case hadCert:
		res.State = StateRenewed
		e.log.Infof("Certificate '%s' is invalid. It will be renewed.", id.CertPath())
	default:
		res.State = StateIssued
		e.log.Infof("Certificate '%s' is missing. It will be issued.", id.CertPath())
	}

	defer e.cleanup(id)

	notAfter, err := e.renew(ctx, id, hadCert)
	if err != nil {
		return res, err
	}
	res.NotAfter = notAfter
	return res, nil
}

func (e *Engine) renew(ctx context.Context, id *Identity, fromCert bool) (time.Time, error) {
	var san *SANExtension
	if !id.IsRoot() {
		san = &SANExtension{DNSNames: id.SANNames(), ConfigPath: id.ConfigPath()}
		if err := WriteSANConfig(san.ConfigPath, e.baseConfig, san.DNSNames); err != nil {
			return time.Time{}, e.fail(StepWriteSANConfig, san.ConfigPath, err)
		}
	}

	if fromCert {
		if err := e.backend.ExtractCSR(ctx, id.CertPath(), id.KeyPath(), id.CSRPath()); err != nil {
			return time.Time{}, e.fail(StepExtractCSR, id.CSRPath(), err)
		}
		e.log.Infof("Signing request '%s' extracted from expired certificate.", id.CSRPath())
	} else {
		if err := e.backend.CreateCSR(ctx, id.KeyPath(), id.Subject(), id.CSRPath(), san); err != nil {
			return time.Time{}, e.fail(StepCreateCSR, id.CSRPath(), err)
		}
		e.log.Infof("Signing request '%s' generated.", id.CSRPath())
	}

	if issuer, ok := id.Issuer(); ok {
		if err := e.backend.CASign(ctx, id.CSRPath(), issuer, id.ValidFor(), id.CertPath(), san); err != nil {
			return time.Time{}, e.fail(StepCASign, id.CertPath(), err)
		}
	} else {
		if err := e.backend.SelfSign(ctx, id.CSRPath(), id.KeyPath(), id.ValidFor(), id.CertPath(), nil); err != nil {
			return time.Time{}, e.fail(StepSelfSign, id.CertPath(), err)
		}
	}
	e.log.Infof("Certificate '%s' renewed.", id.CertPath())

	notAfter, err := e.backend.ReadExpiration(ctx, id.CertPath())
	if err != nil {
		return time.Time{}, e.fail(StepReadExpiration, id.CertPath(), err)
	}
	return notAfter, nil
}

func (e *Engine) fail(step Step, path string, err error) error {
	e.log.Errorf("Failed to %s for '%s': %v", step, path, err)
	return &StepError{Step: step, Path: path, Err: err}
}

// cleanup removes the transient request and SAN config. Absent files are fine.
func (e *Engine) cleanup(id *Identity) {
	e.log.Debugf("Cleaning temp files...")
	for _, path := range []string{id.CSRPath(), id.ConfigPath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			e.log.Warnf("Could not remove '%s': %v", path, err)
		}
	}
	e.log.Debugf("Temp files removed.")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
