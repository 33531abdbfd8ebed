// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package native is a signing backend that needs no external toolkit. Keys,
// requests and certificates are produced with Go's crypto/x509 and parsed
// back through Cloudflare's cfssl helpers, writing the same files openssl
// would: PEM keys and certificates, and an issuer serial file next to the
// authority certificate.
package native
