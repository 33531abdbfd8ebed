// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
)

var _ pki.Backend = (*tracingMiddleware)(nil)

type tracingMiddleware struct {
	tracer  trace.Tracer
	backend pki.Backend
}

// Tracing wraps every backend call in a span named after the method.
func Tracing(backend pki.Backend, tracer trace.Tracer) pki.Backend {
	return &tracingMiddleware{tracer: tracer, backend: backend}
}

func (tm *tracingMiddleware) start(ctx context.Context, name, path string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("path", path)))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, pki.Kind(err))
	}
	span.End()
}

func (tm *tracingMiddleware) GenerateKey(ctx context.Context, outPath string, bits int) (err error) {
	ctx, span := tm.start(ctx, "generate_key", outPath)
	span.SetAttributes(attribute.Int("bits", bits))
	defer func() { end(span, err) }()
	return tm.backend.GenerateKey(ctx, outPath, bits)
}

func (tm *tracingMiddleware) CreateCSR(ctx context.Context, keyPath string, subject pki.Subject, outPath string, san *pki.SANExtension) (err error) {
	ctx, span := tm.start(ctx, "create_csr", outPath)
	span.SetAttributes(attribute.String("common_name", subject.CommonName))
	defer func() { end(span, err) }()
	return tm.backend.CreateCSR(ctx, keyPath, subject, outPath, san)
}

func (tm *tracingMiddleware) ExtractCSR(ctx context.Context, certPath, keyPath, outPath string) (err error) {
	ctx, span := tm.start(ctx, "extract_csr", outPath)
	defer func() { end(span, err) }()
	return tm.backend.ExtractCSR(ctx, certPath, keyPath, outPath)
}

func (tm *tracingMiddleware) SelfSign(ctx context.Context, csrPath, keyPath string, days int, outPath string, san *pki.SANExtension) (err error) {
	ctx, span := tm.start(ctx, "self_sign", outPath)
	span.SetAttributes(attribute.Int("days", days))
	defer func() { end(span, err) }()
	return tm.backend.SelfSign(ctx, csrPath, keyPath, days, outPath, san)
}

func (tm *tracingMiddleware) CASign(ctx context.Context, csrPath string, issuer pki.IssuerRef, days int, outPath string, san *pki.SANExtension) (err error) {
	ctx, span := tm.start(ctx, "ca_sign", outPath)
	span.SetAttributes(attribute.Int("days", days), attribute.String("issuer", issuer.CertPath))
	defer func() { end(span, err) }()
	return tm.backend.CASign(ctx, csrPath, issuer, days, outPath, san)
}

func (tm *tracingMiddleware) ReadExpiration(ctx context.Context, certPath string) (notAfter time.Time, err error) {
	ctx, span := tm.start(ctx, "read_expiration", certPath)
	defer func() { end(span, err) }()
	return tm.backend.ReadExpiration(ctx, certPath)
}
