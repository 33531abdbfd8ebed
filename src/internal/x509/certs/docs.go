// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs provides encoding and decoding operations for the [X.509]
// artifacts a certificate authority keeps on disk: certificates, private keys
// and certificate signing requests. Certificates may be [PEM], DER or a
// degenerate [PKCS7] bundle; keys and requests are parsed through Cloudflare's
// cfssl helpers.
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
