// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pki

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable indicates that the signing toolkit could not be invoked at all.
	ErrBackendUnavailable = errors.New("pki: signing backend unavailable")

	// ErrBackendFailed indicates that the signing toolkit ran but reported failure.
	ErrBackendFailed = errors.New("pki: signing backend failed")

	// ErrMalformedCertificate indicates that a certificate's expiration could not be read.
	ErrMalformedCertificate = errors.New("pki: malformed certificate")

	// ErrInvalidIdentity indicates an identity that cannot be constructed from its inputs.
	ErrInvalidIdentity = errors.New("pki: invalid identity")
)

// Step names one operation of the renewal sequence.
type Step string

const (
	StepCreateDir      Step = "create directory"
	StepGenerateKey    Step = "generate key"
	StepCreateCSR      Step = "create signing request"
	StepExtractCSR     Step = "extract signing request"
	StepWriteSANConfig Step = "write SAN config"
	StepSelfSign       Step = "self sign"
	StepCASign         Step = "ca sign"
	StepReadExpiration Step = "read expiration"
)

// StepError records which step failed and on which artifact.
type StepError struct {
	Step Step
	Path string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pki: %s %q: %v", e.Step, e.Path, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Kind returns a short, stable label for the class of err, suitable for
// metric labels. Unknown errors are reported as "other".
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrBackendUnavailable):
		return "backend_unavailable"
	case errors.Is(err, ErrBackendFailed):
		return "backend_failed"
	case errors.Is(err, ErrMalformedCertificate):
		return "malformed_certificate"
	case errors.Is(err, ErrInvalidIdentity):
		return "invalid_identity"
	default:
		return "other"
	}
}
