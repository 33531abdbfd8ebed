// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain verifies and describes the certificates issued by the
// local authority.
//
// A [Chain] holds a leaf and the root that should have signed it;
// [Chain.VerifyChain] checks the signature path and validity at a given
// instant. [Describe] inspects one certificate file and summarizes it as an
// [Entry]; a slice of entries renders as a markdown table with
// [RenderTable] or as JSON with [RenderJSON].
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
