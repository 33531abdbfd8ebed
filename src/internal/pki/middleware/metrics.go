// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
)

var _ pki.Backend = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	backend pki.Backend
}

// Metrics counts backend calls and observes their latency in seconds, both
// labelled by method. The counter also carries an "outcome" label holding
// [pki.Kind] of the returned error.
func Metrics(backend pki.Backend, counter metrics.Counter, latency metrics.Histogram) pki.Backend {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		backend: backend,
	}
}

func (mm *metricsMiddleware) observe(method string, begin time.Time, err error) {
	mm.counter.With("method", method, "outcome", pki.Kind(err)).Add(1)
	mm.latency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (mm *metricsMiddleware) GenerateKey(ctx context.Context, outPath string, bits int) (err error) {
	defer func(begin time.Time) { mm.observe("generate_key", begin, err) }(time.Now())
	return mm.backend.GenerateKey(ctx, outPath, bits)
}

func (mm *metricsMiddleware) CreateCSR(ctx context.Context, keyPath string, subject pki.Subject, outPath string, san *pki.SANExtension) (err error) {
	defer func(begin time.Time) { mm.observe("create_csr", begin, err) }(time.Now())
	return mm.backend.CreateCSR(ctx, keyPath, subject, outPath, san)
}

func (mm *metricsMiddleware) ExtractCSR(ctx context.Context, certPath, keyPath, outPath string) (err error) {
	defer func(begin time.Time) { mm.observe("extract_csr", begin, err) }(time.Now())
	return mm.backend.ExtractCSR(ctx, certPath, keyPath, outPath)
}

func (mm *metricsMiddleware) SelfSign(ctx context.Context, csrPath, keyPath string, days int, outPath string, san *pki.SANExtension) (err error) {
	defer func(begin time.Time) { mm.observe("self_sign", begin, err) }(time.Now())
	return mm.backend.SelfSign(ctx, csrPath, keyPath, days, outPath, san)
}

func (mm *metricsMiddleware) CASign(ctx context.Context, csrPath string, issuer pki.IssuerRef, days int, outPath string, san *pki.SANExtension) (err error) {
	defer func(begin time.Time) { mm.observe("ca_sign", begin, err) }(time.Now())
	return mm.backend.CASign(ctx, csrPath, issuer, days, outPath, san)
}

func (mm *metricsMiddleware) ReadExpiration(ctx context.Context, certPath string) (notAfter time.Time, err error) {
	defer func(begin time.Time) { mm.observe("read_expiration", begin, err) }(time.Now())
	return mm.backend.ReadExpiration(ctx, certPath)
}
