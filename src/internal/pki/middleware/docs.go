// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package middleware decorates a [pki.Backend] with cross-cutting concerns.
//
// Each decorator implements [pki.Backend] itself, so they stack:
//
//	var backend pki.Backend = native.New()
//	backend = middleware.Logging(backend, log)
//	backend = middleware.Metrics(backend, counter, latency)
//	backend = middleware.Tracing(backend, otel.Tracer("local-ca"))
//
// Method labels and span names are the snake_case operation names, for
// example "generate_key" and "ca_sign".
package middleware
