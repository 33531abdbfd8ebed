// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
	"github.com/H0llyW00dzZ/local-ca/src/logger"
)

var _ pki.Backend = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	log     logger.Logger
	backend pki.Backend
}

// Logging logs every backend call at debug level, and failed calls at warn level.
func Logging(backend pki.Backend, log logger.Logger) pki.Backend {
	return &loggingMiddleware{log: log, backend: backend}
}

func (lm *loggingMiddleware) done(method, target string, begin time.Time, err error) {
	message := fmt.Sprintf("Method %s for %s took %s to complete", method, target, time.Since(begin))
	if err != nil {
		lm.log.Warnf("%s with error: %s.", message, err)
		return
	}
	lm.log.Debugf("%s", message)
}

func (lm *loggingMiddleware) GenerateKey(ctx context.Context, outPath string, bits int) (err error) {
	defer func(begin time.Time) { lm.done("generate_key", outPath, begin, err) }(time.Now())
	return lm.backend.GenerateKey(ctx, outPath, bits)
}

func (lm *loggingMiddleware) CreateCSR(ctx context.Context, keyPath string, subject pki.Subject, outPath string, san *pki.SANExtension) (err error) {
	defer func(begin time.Time) { lm.done("create_csr", outPath, begin, err) }(time.Now())
	return lm.backend.CreateCSR(ctx, keyPath, subject, outPath, san)
}

func (lm *loggingMiddleware) ExtractCSR(ctx context.Context, certPath, keyPath, outPath string) (err error) {
	defer func(begin time.Time) { lm.done("extract_csr", outPath, begin, err) }(time.Now())
	return lm.backend.ExtractCSR(ctx, certPath, keyPath, outPath)
}

func (lm *loggingMiddleware) SelfSign(ctx context.Context, csrPath, keyPath string, days int, outPath string, san *pki.SANExtension) (err error) {
	defer func(begin time.Time) { lm.done("self_sign", outPath, begin, err) }(time.Now())
	return lm.backend.SelfSign(ctx, csrPath, keyPath, days, outPath, san)
}

func (lm *loggingMiddleware) CASign(ctx context.Context, csrPath string, issuer pki.IssuerRef, days int, outPath string, san *pki.SANExtension) (err error) {
	defer func(begin time.Time) { lm.done("ca_sign", outPath, begin, err) }(time.Now())
	return lm.backend.CASign(ctx, csrPath, issuer, days, outPath, san)
}

func (lm *loggingMiddleware) ReadExpiration(ctx context.Context, certPath string) (notAfter time.Time, err error) {
	defer func(begin time.Time) { lm.done("read_expiration", certPath, begin, err) }(time.Now())
	return lm.backend.ReadExpiration(ctx, certPath)
}
