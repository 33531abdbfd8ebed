// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package pki implements the certificate lifecycle of a small, local
// certificate authority: one self-signed root plus leaves issued by it.
//
// An [Identity] names a managed certificate and the four artifacts that
// share its storage base path B:
//
//	B.key  private key
//	B.crt  issued certificate
//	B.csr  signing request, present only during renewal
//	B.cnf  SAN extension config, present only during renewal
//
// [Engine.Check] is the state machine. For one identity it generates a
// missing key, reads the certificate expiration and, when the certificate
// is missing or expired, obtains a signing request (extracted from the old
// certificate when one exists), injects the SAN extension for leaves and
// signs it, either with the identity's own key or with the issuer's.
//
// Cryptography is delegated to a [Backend]. The engine never retries: the
// first failure is returned as a [*StepError] wrapping one of
// [ErrBackendUnavailable], [ErrBackendFailed] or [ErrMalformedCertificate].
//
// Identities that share an issuer must be checked root first; the engine
// does not enforce ordering itself.
package pki
